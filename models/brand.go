package models

// Brand is an owning chain/format a location can belong to
type Brand struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}
