package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/services"
	"github.com/maintroute/maintenance-api/utils"
)

// WorkOrderStop is one stop of a create request. The location name is
// the only hard requirement; technician and date may still be empty at
// creation time and edited later.
type WorkOrderStop struct {
	LocationName  string      `json:"location_name" binding:"required"`
	Address       string      `json:"address"`
	PostalCode    string      `json:"postal_code"`
	City          string      `json:"city"`
	Province      string      `json:"province"`
	Technician    string      `json:"technician"`
	ScheduledDate string      `json:"scheduled_date"`
	ScheduledTime interface{} `json:"scheduled_time"` // clock time, date-time, fractional day or HH:MM[:SS[.ffffff]]
	ContactName   *string     `json:"contact_name"`
	Phone         *string     `json:"phone"`
	Equipment     *string     `json:"equipment"`
	Notes         *string     `json:"notes"`
	Lat           *float64    `json:"lat"`
	Lon           *float64    `json:"lon"`
}

// CreateWorkOrderRequest represents the request body for creating a work order
type CreateWorkOrderRequest struct {
	Stops           []WorkOrderStop `json:"stops" binding:"required,min=1,dive"`
	TotalDistanceKm *float64        `json:"total_distance_km"`
}

// workOrderGroup is one active order assembled from its rows
type workOrderGroup struct {
	OrderID         string                `json:"order_id"`
	OrderNumber     int                   `json:"order_number"`
	CreatedAt       time.Time             `json:"created_at"`
	TotalDistanceKm float64               `json:"total_distance_km"`
	Rows            []models.WorkOrderRow `json:"rows"`
}

// CreateWorkOrder handles POST /api/v1/workorders.
// Assigns a fresh order id and the next sequential order number, then
// inserts one row per stop in a single transaction; either the whole
// batch becomes visible or nothing does.
func CreateWorkOrder(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	totalDistance := routeDistanceFor(req)
	orderID := uuid.NewString()

	db := config.GetDB()
	var orderNumber int
	err := db.Transaction(func(tx *gorm.DB) error {
		// max+1 numbering; single-writer assumption, the transaction
		// only confines the race, it does not remove it
		var maxNumber *int
		if err := tx.Model(&models.WorkOrderRow{}).Select("MAX(order_number)").Scan(&maxNumber).Error; err != nil {
			return err
		}
		orderNumber = 1
		if maxNumber != nil {
			orderNumber = *maxNumber + 1
		}

		for _, stop := range req.Stops {
			row := models.WorkOrderRow{
				OrderID:         orderID,
				OrderNumber:     orderNumber,
				LocationName:    stop.LocationName,
				Address:         stop.Address,
				PostalCode:      stop.PostalCode,
				City:            stop.City,
				Province:        stop.Province,
				Technician:      stop.Technician,
				ScheduledDate:   utils.ParseDate(stop.ScheduledDate),
				ScheduledTime:   utils.NormalizeTime(stop.ScheduledTime),
				TotalDistanceKm: totalDistance,
				ContactName:     stop.ContactName,
				Phone:           stop.Phone,
				Equipment:       stop.Equipment,
				Notes:           stop.Notes,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create work order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":          orderID,
			"order_number":      orderNumber,
			"stops":             len(req.Stops),
			"total_distance_km": totalDistance,
		},
	})
}

// routeDistanceFor returns the distance to stamp on every row: the
// value supplied by the caller, or the route sum over the stops that
// carry a complete coordinate.
func routeDistanceFor(req CreateWorkOrderRequest) float64 {
	if req.TotalDistanceKm != nil {
		return *req.TotalDistanceKm
	}
	var points []services.Coordinate
	for _, stop := range req.Stops {
		if stop.Lat != nil && stop.Lon != nil {
			points = append(points, services.Coordinate{Lat: *stop.Lat, Lon: *stop.Lon})
		}
	}
	return services.RouteDistance(points)
}

// ListWorkOrders handles GET /api/v1/workorders - lists active orders grouped by order id
func ListWorkOrders(c *gin.Context) {
	db := config.GetDB()

	var rows []models.WorkOrderRow
	if err := db.Order("order_number, id").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load work orders",
			},
		})
		return
	}

	groups := []workOrderGroup{}
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			groups = append(groups, workOrderGroup{
				OrderID:         row.OrderID,
				OrderNumber:     row.OrderNumber,
				CreatedAt:       row.CreatedAt,
				TotalDistanceKm: row.TotalDistanceKm,
			})
			i = len(groups) - 1
			index[row.OrderID] = i
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    groups,
	})
}

// WorkOrderRowEdit carries the mutable fields of one row
type WorkOrderRowEdit struct {
	ID            uint        `json:"id" binding:"required"`
	Technician    *string     `json:"technician"`
	ScheduledDate *string     `json:"scheduled_date"`
	ScheduledTime interface{} `json:"scheduled_time"`
	ContactName   *string     `json:"contact_name"`
	Phone         *string     `json:"phone"`
	Notes         *string     `json:"notes"`
}

// EditWorkOrderRowsRequest represents the request body for editing rows
type EditWorkOrderRowsRequest struct {
	Rows []WorkOrderRowEdit `json:"rows" binding:"required,min=1,dive"`
}

// EditWorkOrderRows handles PUT /api/v1/workorders/:id/rows.
// Updates the mutable fields of each addressed row. Time-of-day values
// are normalized to HH:MM:SS; unparseable input becomes null.
func EditWorkOrderRows(c *gin.Context) {
	orderID := c.Param("id")

	var req EditWorkOrderRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	updated := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, edit := range req.Rows {
			updates := map[string]interface{}{}
			if edit.Technician != nil {
				updates["technician"] = *edit.Technician
			}
			if edit.ScheduledDate != nil {
				updates["scheduled_date"] = utils.ParseDate(*edit.ScheduledDate)
			}
			if edit.ScheduledTime != nil {
				updates["scheduled_time"] = utils.NormalizeTime(edit.ScheduledTime)
			}
			if edit.ContactName != nil {
				updates["contact_name"] = *edit.ContactName
			}
			if edit.Phone != nil {
				updates["phone"] = *edit.Phone
			}
			if edit.Notes != nil {
				updates["notes"] = *edit.Notes
			}
			if len(updates) == 0 {
				continue
			}

			res := tx.Model(&models.WorkOrderRow{}).
				Where("id = ? AND order_id = ?", edit.ID, orderID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update work order rows",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"updated": updated},
	})
}

// DeleteWorkOrderRowsRequest represents the request body for deleting rows
type DeleteWorkOrderRowsRequest struct {
	RowIDs []uint `json:"row_ids" binding:"required,min=1"`
}

// DeleteWorkOrderRows handles DELETE /api/v1/workorders/:id/rows.
// Removes specific rows from an active order; remaining rows keep
// their identifiers, nothing is renumbered.
func DeleteWorkOrderRows(c *gin.Context) {
	orderID := c.Param("id")

	var req DeleteWorkOrderRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	res := db.Where("order_id = ? AND id IN ?", orderID, req.RowIDs).Delete(&models.WorkOrderRow{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete work order rows",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": res.RowsAffected},
	})
}

// DeleteWorkOrder handles DELETE /api/v1/workorders/:id - removes all rows of an active order
func DeleteWorkOrder(c *gin.Context) {
	orderID := c.Param("id")

	db := config.GetDB()
	res := db.Where("order_id = ?", orderID).Delete(&models.WorkOrderRow{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete work order",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": fmt.Sprintf("No active work order found for id %s", orderID),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": res.RowsAffected},
	})
}

// CompleteWorkOrder handles POST /api/v1/workorders/:id/complete.
// The archive transition: propagates the order's schedule and contact
// data back onto the matching location records, copies every row into
// the history table and deletes them from the active store. The whole
// operation runs in one transaction so a failure leaves the order
// active and the archive untouched.
//
// Locations are matched by display name, not id, mirroring how orders
// were historically linked to the registry. Two locations sharing a
// name both receive the update.
func CompleteWorkOrder(c *gin.Context) {
	orderID := c.Param("id")

	db := config.GetDB()
	archived := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var rows []models.WorkOrderRow
		if err := tx.Where("order_id = ?", orderID).Order("id").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return gorm.ErrRecordNotFound
		}

		first := rows[0]
		updates := map[string]interface{}{}
		if first.ScheduledDate != nil {
			updates["last_service"] = *first.ScheduledDate
		}
		if first.ContactName != nil && *first.ContactName != "" {
			updates["contact_name"] = *first.ContactName
		}
		if first.Phone != nil && *first.Phone != "" {
			updates["phone"] = *first.Phone
		}
		if first.Notes != nil && *first.Notes != "" {
			updates["notes"] = *first.Notes
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Location{}).
				Where("name = ?", first.LocationName).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		for _, row := range rows {
			entry := models.FromWorkOrderRow(row, now)
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		res := tx.Where("order_id = ?", orderID).Delete(&models.WorkOrderRow{})
		if res.Error != nil {
			return res.Error
		}
		archived = len(rows)
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		// Completing an already-completed (or unknown) order is a
		// no-op, reported as not found
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": fmt.Sprintf("No active work order found for id %s", orderID),
			},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to complete work order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"archived": archived},
	})
}

// GetWorkOrderPDF handles GET /api/v1/workorders/:id/pdf - renders the printable work order
func GetWorkOrderPDF(c *gin.Context) {
	orderID := c.Param("id")

	db := config.GetDB()
	var rows []models.WorkOrderRow
	if err := db.Where("order_id = ?", orderID).Order("id").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load work order",
			},
		})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": fmt.Sprintf("No active work order found for id %s", orderID),
			},
		})
		return
	}

	pdf, err := services.GenerateWorkOrderPDF(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PDF_ERROR",
				"message": "Failed to render work order PDF",
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=work_order_%d.pdf", rows[0].OrderNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
