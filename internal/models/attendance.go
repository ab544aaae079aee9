// internal/models/attendance.go
package models

import "time"

// Attendance is one user's record for one calendar day. The (user_uid, date)
// pair is unique: a day has at most one check-in and one check-out.
//
// Timeliness status (normal/late/early) and approval provenance are separate
// columns so an approval override never destroys the classifier's answer.
type Attendance struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserUID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendance_user_date,priority:1" json:"user_uid"`
	Name    string `gorm:"not null" json:"name"`
	Date    string `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_date,priority:2;index" json:"date"` // YYYY-MM-DD

	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	CheckInLat      *float64   `json:"check_in_lat,omitempty"`
	CheckInLng      *float64   `json:"check_in_lng,omitempty"`
	CheckInAccuracy *float64   `json:"check_in_accuracy,omitempty"`
	CheckInStatus   string     `gorm:"type:varchar(10)" json:"check_in_status,omitempty"`
	CheckInApproved bool       `gorm:"not null;default:false" json:"check_in_approved"`

	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	CheckOutLat      *float64   `json:"check_out_lat,omitempty"`
	CheckOutLng      *float64   `json:"check_out_lng,omitempty"`
	CheckOutAccuracy *float64   `json:"check_out_accuracy,omitempty"`
	CheckOutStatus   string     `gorm:"type:varchar(10)" json:"check_out_status,omitempty"`
	CheckOutApproved bool       `gorm:"not null;default:false" json:"check_out_approved"`

	WorkHours *float64 `json:"work_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
