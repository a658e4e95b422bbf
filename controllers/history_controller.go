package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/services"
)

// ListHistory handles GET /api/v1/history - archived work orders with optional filters
func ListHistory(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("order_number DESC, id")
	if technician := c.Query("technician"); technician != "" {
		query = query.Where("technician = ?", technician)
	}
	if number := c.Query("order_number"); number != "" {
		query = query.Where("order_number = ?", number)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("scheduled_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("scheduled_date <= ?", to)
	}

	var entries []models.HistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// historyReportRow mirrors the history_report view
type historyReportRow struct {
	OrderNumber     int        `json:"order_number"`
	OrderID         string     `json:"order_id"`
	LocationName    string     `json:"location_name"`
	Technician      string     `json:"technician"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	ScheduledTime   *string    `json:"scheduled_time"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	ArchivedAt      time.Time  `json:"archived_at"`
	Brand           *string    `json:"brand"`
	City            *string    `json:"city"`
	Province        *string    `json:"province"`
	LastService     *time.Time `json:"last_service"`
	NextService     *time.Time `json:"next_service"`
}

// HistoryReport handles GET /api/v1/history/report - the read-only reporting view
func HistoryReport(c *gin.Context) {
	db := config.GetDB()

	var rows []historyReportRow
	if err := db.Raw("SELECT * FROM history_report ORDER BY order_number DESC").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load history report",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rows,
	})
}

// DeleteHistoryRowsRequest gates row deletion behind a typed literal
type DeleteHistoryRowsRequest struct {
	RowIDs  []uint `json:"row_ids" binding:"required,min=1"`
	Confirm string `json:"confirm" binding:"required"`
}

// DeleteHistoryRows handles DELETE /api/v1/history/rows.
// Irreversible, admin-only; the caller must type the literal DELETE.
func DeleteHistoryRows(c *gin.Context) {
	var req DeleteHistoryRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "DELETE" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_REQUIRED",
				"message": "Type DELETE in the confirm field to remove archive rows",
			},
		})
		return
	}

	db := config.GetDB()
	res := db.Where("id IN ?", req.RowIDs).Delete(&models.HistoryEntry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete history rows",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": res.RowsAffected},
	})
}

// ClearHistoryRequest gates the full wipe behind a typed literal
type ClearHistoryRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}

// ClearHistory handles DELETE /api/v1/history.
// Empties the whole archive. Irreversible, admin-only, typed RESET required.
func ClearHistory(c *gin.Context) {
	var req ClearHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "RESET" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_REQUIRED",
				"message": "Type RESET in the confirm field to clear the archive",
			},
		})
		return
	}

	db := config.GetDB()
	res := db.Where("1 = 1").Delete(&models.HistoryEntry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to clear history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": res.RowsAffected},
	})
}

// ExportHistory handles GET /api/v1/history/export - archive as a workbook
func ExportHistory(c *gin.Context) {
	db := config.GetDB()

	var entries []models.HistoryEntry
	if err := db.Order("order_number, id").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load history",
			},
		})
		return
	}

	data, err := services.GenerateHistoryWorkbook(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_ERROR",
				"message": "Failed to generate workbook",
			},
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=history.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
