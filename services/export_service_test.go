package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"github.com/maintroute/maintenance-api/models"
)

func TestLocationsWorkbook_RoundTrip(t *testing.T) {
	lat, lon := 45.46, 9.19
	equipment := "two fridges"
	lastService := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	in := []models.Location{
		{
			Name: "Store A", Address: "Via Roma 1", PostalCode: "20100",
			City: "Milano", Province: "MI", Region: "Lombardia",
			LastService: &lastService, Equipment: &equipment,
			Lat: &lat, Lon: &lon, Code: "A01", Brand: "Acme",
		},
		{Name: "Store B", Address: "Via Po 2", City: "Torino"},
	}

	data, err := GenerateLocationsWorkbook(in)
	assert.NoError(t, err)

	out, err := ParseLocationsWorkbook(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, out, 2)

	assert.Equal(t, "Store A", out[0].Name)
	assert.Equal(t, "20100", out[0].PostalCode)
	assert.Equal(t, "Acme", out[0].Brand)
	if assert.NotNil(t, out[0].Lat) {
		assert.InDelta(t, lat, *out[0].Lat, 1e-9)
	}
	if assert.NotNil(t, out[0].LastService) {
		assert.Equal(t, "2024-03-15", out[0].LastService.Format("2006-01-02"))
	}
	if assert.NotNil(t, out[0].Equipment) {
		assert.Equal(t, equipment, *out[0].Equipment)
	}

	assert.Equal(t, "Store B", out[1].Name)
	assert.Nil(t, out[1].Lat)
	assert.Nil(t, out[1].Equipment)
}

func TestParseLocationsWorkbook_ColumnValidation(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		valid   bool
	}{
		{"exact set in order", LocationColumns, true},
		{"exact set reordered", reversed(LocationColumns), true},
		{"missing column", LocationColumns[:len(LocationColumns)-1], false},
		{"extra column", append(append([]string{}, LocationColumns...), "surprise"), false},
		{"unrelated headers", []string{"a", "b", "c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := workbookWithHeaders(t, tt.headers)
			_, err := ParseLocationsWorkbook(bytes.NewReader(data))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseLocationsWorkbook_HeaderCaseInsensitive(t *testing.T) {
	var headers []string
	for _, h := range LocationColumns {
		headers = append(headers, "  "+strings.ToUpper(h)+"  ")
	}
	data := workbookWithHeaders(t, headers)
	_, err := ParseLocationsWorkbook(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestParseLocationsWorkbook_DecimalComma(t *testing.T) {
	f := excelize.NewFile()
	for col, h := range LocationColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		assert.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	row := map[string]string{
		"name": "Store A", "address": "Via Roma 1", "city": "Milano",
		"lat": "45,46", "lon": "9,19",
	}
	for col, h := range LocationColumns {
		if v, ok := row[h]; ok {
			cell, _ := excelize.CoordinatesToCellName(col+1, 2)
			assert.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	f.Close()

	out, err := ParseLocationsWorkbook(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	if assert.Len(t, out, 1) && assert.NotNil(t, out[0].Lat) {
		assert.InDelta(t, 45.46, *out[0].Lat, 1e-9)
	}
}

func TestGenerateHistoryWorkbook(t *testing.T) {
	scheduled := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	morning := "09:00:00"
	entries := []models.HistoryEntry{
		{
			OrderID: "o1", OrderNumber: 7, LocationName: "Store A",
			Technician: "Rossi", ScheduledDate: &scheduled, ScheduledTime: &morning,
			TotalDistanceKm: 18.4, ArchivedAt: time.Now(),
		},
	}

	data, err := GenerateHistoryWorkbook(entries)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	assert.NoError(t, err)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, HistoryColumns, rows[0][:len(HistoryColumns)])
		assert.Equal(t, "Store A", rows[1][2])
		assert.Equal(t, "Rossi", rows[1][7])
	}
}

func workbookWithHeaders(t *testing.T, headers []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		assert.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return buf.Bytes()
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
