// internal/models/approval.go
package models

import "time"

type ApprovalType string

const (
	ApprovalCheckIn  ApprovalType = "check_in"
	ApprovalCheckOut ApprovalType = "check_out"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRequest is an appeal to bypass the geofence for one check event.
// The (user_uid, date, type) key is unique: re-requesting after a rejection
// reuses the row, and the DB index is what makes the existence check safe
// under concurrent creates.
type ApprovalRequest struct {
	ID      uint         `gorm:"primaryKey" json:"id"`
	UserUID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_approval_key,priority:1" json:"user_uid"`
	Name    string       `gorm:"not null" json:"name"`
	Date    string       `gorm:"type:varchar(10);not null;uniqueIndex:idx_approval_key,priority:2" json:"date"`
	Type    ApprovalType `gorm:"type:varchar(10);not null;uniqueIndex:idx_approval_key,priority:3" json:"type"`

	Reason   string  `gorm:"type:text;not null" json:"reason"`
	Lat      float64 `gorm:"not null" json:"lat"`
	Lng      float64 `gorm:"not null" json:"lng"`
	Accuracy float64 `gorm:"not null" json:"accuracy"`

	Status          ApprovalStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	ReviewedBy      string         `gorm:"type:varchar(36)" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
