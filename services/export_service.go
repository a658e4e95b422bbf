package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/utils"
)

// LocationColumns is the exact column set for location workbooks,
// shared by export and import so a round trip always validates
var LocationColumns = []string{
	"name", "address", "postal_code", "city", "province", "region",
	"last_service", "next_service", "equipment", "notes",
	"lat", "lon", "code", "brand", "contact_name", "phone",
}

// MunicipalityColumns is the exact column set for the municipality reference workbook
var MunicipalityColumns = []string{
	"code", "name", "postal_code", "province", "region", "alt_code",
	"lat", "lon", "extra",
}

// HistoryColumns is the header for history exports
var HistoryColumns = []string{
	"order_number", "order_id", "location_name", "address", "postal_code",
	"city", "province", "technician", "scheduled_date", "scheduled_time",
	"total_distance_km", "contact_name", "phone", "notes", "archived_at",
}

// newWorkbook creates a single-sheet workbook with a styled header row
func newWorkbook(sheet string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func finishWorkbook(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateLocationsWorkbook renders the location registry as a workbook
func GenerateLocationsWorkbook(locations []models.Location) ([]byte, error) {
	const sheet = "Locations"
	f, err := newWorkbook(sheet, LocationColumns)
	if err != nil {
		return nil, err
	}

	for i, loc := range locations {
		values := []interface{}{
			loc.Name, loc.Address, loc.PostalCode, loc.City, loc.Province, loc.Region,
			dateCell(loc.LastService), dateCell(loc.NextService),
			strCell(loc.Equipment), strCell(loc.Notes),
			floatCell(loc.Lat), floatCell(loc.Lon),
			loc.Code, loc.Brand, strCell(loc.ContactName), strCell(loc.Phone),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	return finishWorkbook(f)
}

// GenerateHistoryWorkbook renders archived work orders as a workbook
func GenerateHistoryWorkbook(entries []models.HistoryEntry) ([]byte, error) {
	const sheet = "History"
	f, err := newWorkbook(sheet, HistoryColumns)
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		values := []interface{}{
			e.OrderNumber, e.OrderID, e.LocationName, e.Address, e.PostalCode,
			e.City, e.Province, e.Technician,
			dateCell(e.ScheduledDate), strCell(e.ScheduledTime),
			e.TotalDistanceKm, strCell(e.ContactName), strCell(e.Phone),
			strCell(e.Notes), e.ArchivedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	return finishWorkbook(f)
}

// ParseLocationsWorkbook reads an uploaded workbook into location
// records. The header row must carry exactly the LocationColumns set
// (any order); otherwise the import is rejected before touching data.
func ParseLocationsWorkbook(r io.Reader) ([]models.Location, error) {
	rows, header, err := readSheet(r, LocationColumns)
	if err != nil {
		return nil, err
	}

	var locations []models.Location
	for _, row := range rows {
		get := func(col string) string { return cellValue(row, header, col) }

		loc := models.Location{
			Name:        get("name"),
			Address:     get("address"),
			PostalCode:  get("postal_code"),
			City:        get("city"),
			Province:    get("province"),
			Region:      get("region"),
			LastService: utils.ParseDate(get("last_service")),
			NextService: utils.ParseDate(get("next_service")),
			Equipment:   optString(get("equipment")),
			Notes:       optString(get("notes")),
			Lat:         optFloat(get("lat")),
			Lon:         optFloat(get("lon")),
			Code:        get("code"),
			Brand:       get("brand"),
			ContactName: optString(get("contact_name")),
			Phone:       optString(get("phone")),
		}
		if loc.Name == "" {
			continue // skip trailing blank rows
		}
		// A half-filled coordinate is worse than none
		if (loc.Lat == nil) != (loc.Lon == nil) {
			loc.Lat, loc.Lon = nil, nil
		}
		locations = append(locations, loc)
	}

	return locations, nil
}

// ParseMunicipalitiesWorkbook reads the static place reference workbook
func ParseMunicipalitiesWorkbook(r io.Reader) ([]models.Municipality, error) {
	rows, header, err := readSheet(r, MunicipalityColumns)
	if err != nil {
		return nil, err
	}

	var municipalities []models.Municipality
	for _, row := range rows {
		get := func(col string) string { return cellValue(row, header, col) }

		m := models.Municipality{
			Code:       get("code"),
			Name:       get("name"),
			PostalCode: get("postal_code"),
			Province:   get("province"),
			Region:     get("region"),
			AltCode:    get("alt_code"),
			Lat:        optFloat(get("lat")),
			Lon:        optFloat(get("lon")),
			Extra:      get("extra"),
		}
		if m.Name == "" {
			continue
		}
		municipalities = append(municipalities, m)
	}

	return municipalities, nil
}

// readSheet opens the first sheet and validates the header against the
// expected column set. Returns data rows and a column -> index map.
func readSheet(r io.Reader, expected []string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("workbook is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, col := range expected {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 || len(header) != len(expected) {
		return nil, nil, fmt.Errorf("workbook columns do not match, expected exactly: %s", strings.Join(expected, ", "))
	}

	return rows[1:], header, nil
}

func cellValue(row []string, header map[string]int, col string) string {
	idx, ok := header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func strCell(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func dateCell(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.Format("2006-01-02")
}
