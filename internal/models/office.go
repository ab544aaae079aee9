// internal/models/office.go
package models

import "time"

// OfficeLocation is a geofence reference point. Radii are meters and must be
// strictly positive; zero means "use the deployment default".
type OfficeLocation struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Address        string    `json:"address,omitempty"`
	Lat            float64   `gorm:"not null" json:"lat"`
	Lng            float64   `gorm:"not null" json:"lng"`
	CheckInRadius  float64   `gorm:"not null" json:"check_in_radius"`
	CheckOutRadius float64   `gorm:"not null" json:"check_out_radius"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
