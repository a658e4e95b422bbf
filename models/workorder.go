package models

import (
	"time"
)

// WorkOrderRow is one scheduled stop of a work order. All rows of the
// same order share OrderID, OrderNumber and TotalDistanceKm (the
// distance is deliberately duplicated onto every row for display).
type WorkOrderRow struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         string     `gorm:"not null;index" json:"order_id"` // generated UUID shared by the batch
	OrderNumber     int        `gorm:"not null" json:"order_number"`   // human-readable sequence, max+1 at creation
	CreatedAt       time.Time  `json:"created_at"`
	LocationName    string     `gorm:"not null" json:"location_name"`
	Address         string     `json:"address"`
	PostalCode      string     `json:"postal_code"`
	City            string     `json:"city"`
	Province        string     `json:"province"`
	Technician      string     `json:"technician"`
	ScheduledDate   *time.Time `gorm:"type:date" json:"scheduled_date"`
	ScheduledTime   *string    `json:"scheduled_time"` // canonical HH:MM:SS, nil when unknown
	TotalDistanceKm float64    `json:"total_distance_km"`
	ContactName     *string    `json:"contact_name"`
	Phone           *string    `json:"phone"`
	Equipment       *string    `gorm:"type:text" json:"equipment"`
	Notes           *string    `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the WorkOrderRow model
func (WorkOrderRow) TableName() string {
	return "work_orders"
}
