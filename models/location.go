package models

import (
	"time"
)

// Location represents a retail point of sale under maintenance
type Location struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"not null;index" json:"name"`
	Address       string     `gorm:"not null" json:"address"`
	PostalCode    string     `json:"postal_code"`
	City          string     `gorm:"not null" json:"city"`
	Province      string     `json:"province"`
	Region        string     `json:"region"`
	LastService   *time.Time `gorm:"type:date" json:"last_service"` // date of the most recent completed visit
	NextService   *time.Time `gorm:"type:date" json:"next_service"`
	Equipment     *string    `gorm:"type:text" json:"equipment"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	Lat           *float64   `json:"lat"` // either both Lat and Lon are set or neither is
	Lon           *float64   `json:"lon"`
	Code          string     `json:"code"`
	Brand         string     `json:"brand"`
	ContactName   *string    `json:"contact_name"`
	Phone         *string    `json:"phone"`
	GeocodeStatus string     `json:"geocode_status"` // "", "ok" or "failed"
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}

// HasCoordinate reports whether the location carries a complete coordinate
func (l *Location) HasCoordinate() bool {
	return l.Lat != nil && l.Lon != nil
}

// Service status thresholds. A visit older than six months is overdue,
// one older than five months is coming due.
const (
	dueSoonAfter = 150 * 24 * time.Hour
	overdueAfter = 180 * 24 * time.Hour
)

// DueStatus classifies the location by the age of its last service visit
func (l *Location) DueStatus(now time.Time) string {
	if l.LastService == nil {
		return "never_serviced"
	}
	age := now.Sub(*l.LastService)
	switch {
	case age > overdueAfter:
		return "overdue"
	case age > dueSoonAfter:
		return "due_soon"
	default:
		return "ok"
	}
}
