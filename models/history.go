package models

import (
	"time"
)

// HistoryEntry is a frozen copy of a WorkOrderRow taken when the order
// was completed. CreatedAt carries the original creation timestamp of
// the row; ArchivedAt records when the order was moved here. Entries
// are immutable except for administrative deletion.
type HistoryEntry struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         string     `gorm:"not null;index" json:"order_id"`
	OrderNumber     int        `gorm:"not null" json:"order_number"`
	CreatedAt       time.Time  `gorm:"autoCreateTime:false" json:"created_at"`
	ArchivedAt      time.Time  `json:"archived_at"`
	LocationName    string     `gorm:"not null" json:"location_name"`
	Address         string     `json:"address"`
	PostalCode      string     `json:"postal_code"`
	City            string     `json:"city"`
	Province        string     `json:"province"`
	Technician      string     `json:"technician"`
	ScheduledDate   *time.Time `gorm:"type:date" json:"scheduled_date"`
	ScheduledTime   *string    `json:"scheduled_time"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	ContactName     *string    `json:"contact_name"`
	Phone           *string    `json:"phone"`
	Equipment       *string    `gorm:"type:text" json:"equipment"`
	Notes           *string    `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the HistoryEntry model
func (HistoryEntry) TableName() string {
	return "work_order_history"
}

// FromWorkOrderRow builds the archive copy of an active row
func FromWorkOrderRow(row WorkOrderRow, archivedAt time.Time) HistoryEntry {
	return HistoryEntry{
		OrderID:         row.OrderID,
		OrderNumber:     row.OrderNumber,
		CreatedAt:       row.CreatedAt,
		ArchivedAt:      archivedAt,
		LocationName:    row.LocationName,
		Address:         row.Address,
		PostalCode:      row.PostalCode,
		City:            row.City,
		Province:        row.Province,
		Technician:      row.Technician,
		ScheduledDate:   row.ScheduledDate,
		ScheduledTime:   row.ScheduledTime,
		TotalDistanceKm: row.TotalDistanceKm,
		ContactName:     row.ContactName,
		Phone:           row.Phone,
		Equipment:       row.Equipment,
		Notes:           row.Notes,
	}
}
