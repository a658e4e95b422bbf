package models

// Municipality is a static reference record mapping a place name to
// its coordinate and administrative codes. The set is loaded once from
// a workbook and replaced wholesale on re-import.
type Municipality struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"uniqueIndex;not null" json:"name"`
	Code       string   `json:"code"`
	PostalCode string   `json:"postal_code"`
	Province   string   `json:"province"`
	Region     string   `json:"region"`
	AltCode    string   `json:"alt_code"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Extra      string   `json:"extra"`
}

// TableName specifies the table name for the Municipality model
func (Municipality) TableName() string {
	return "municipalities"
}
