package models

import (
	"time"
)

// LoginRecord is one audited login attempt. Successful logins stay
// open (nil LogoutTime) until the matching logout closes them with the
// session duration in minutes.
type LoginRecord struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Username        string     `gorm:"not null;index" json:"username"`
	Role            string     `json:"role"`
	LoginTime       time.Time  `gorm:"not null" json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time"`
	SessionDuration *float64   `json:"session_duration"` // minutes
	Success         bool       `gorm:"not null" json:"success"`
	IP              string     `json:"ip"`
}

// TableName specifies the table name for the LoginRecord model
func (LoginRecord) TableName() string {
	return "login_log"
}
