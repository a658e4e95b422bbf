package services

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/utils"
)

// Column headers and widths (mm) for the two rows printed per stop
var (
	pdfHeadersLine1 = []string{"Location", "Date", "Time", "Contact", "Phone"}
	pdfWidthsLine1  = []float64{60, 28, 22, 45, 25}
	pdfHeadersLine2 = []string{"Equipment", "Address", "City", "Postal", "Province"}
	pdfWidthsLine2  = []float64{35, 65, 45, 18, 17}
)

// GenerateWorkOrderPDF renders a printable work order: a document
// header with the order number, dates and stop names, then a two-row
// table block per stop.
func GenerateWorkOrderPDF(rows []models.WorkOrderRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("work order has no rows")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Document header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Maintenance Schedule", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Work order n. %d - total route distance %.1f km",
		rows[0].OrderNumber, rows[0].TotalDistanceKm), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Scheduled: "+scheduledDates(rows), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Locations: "+stopNames(rows), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, row := range rows {
		date, clock := "", ""
		if row.ScheduledDate != nil {
			date = row.ScheduledDate.Format("02/01/2006")
		}
		if row.ScheduledTime != nil && len(*row.ScheduledTime) >= 5 {
			clock = (*row.ScheduledTime)[:5]
		}

		writeTableRow(pdf, pdfHeadersLine1, pdfWidthsLine1, []string{
			utils.SanitizeText(row.LocationName),
			date,
			clock,
			utils.SanitizePtr(row.ContactName),
			utils.SanitizePtr(row.Phone),
		})
		writeTableRow(pdf, pdfHeadersLine2, pdfWidthsLine2, []string{
			utils.SanitizePtr(row.Equipment),
			utils.SanitizeText(row.Address),
			utils.SanitizeText(row.City),
			row.PostalCode,
			row.Province,
		})
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTableRow prints one header line and one value line with a full grid
func writeTableRow(pdf *fpdf.Fpdf, headers []string, widths []float64, values []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0, 128, 0)
	pdf.SetTextColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, v := range values {
		pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func scheduledDates(rows []models.WorkOrderRow) string {
	seen := map[string]bool{}
	var dates []string
	for _, row := range rows {
		if row.ScheduledDate == nil {
			continue
		}
		d := row.ScheduledDate.Format("02/01/2006")
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return "no date set"
	}
	sort.Strings(dates)
	return strings.Join(dates, ", ")
}

func stopNames(rows []models.WorkOrderRow) string {
	seen := map[string]bool{}
	var names []string
	for _, row := range rows {
		if !seen[row.LocationName] {
			seen[row.LocationName] = true
			names = append(names, utils.SanitizeText(row.LocationName))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
