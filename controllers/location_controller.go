package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/utils"
)

// LocationRequest represents the request body for creating or updating a location
type LocationRequest struct {
	Name        string   `json:"name" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	PostalCode  string   `json:"postal_code"`
	City        string   `json:"city" binding:"required"`
	Province    string   `json:"province"`
	Region      string   `json:"region"`
	LastService string   `json:"last_service"`
	NextService string   `json:"next_service"`
	Equipment   *string  `json:"equipment"`
	Notes       *string  `json:"notes"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Code        string   `json:"code"`
	Brand       string   `json:"brand"`
	ContactName *string  `json:"contact_name"`
	Phone       *string  `json:"phone"`
}

// locationResponse decorates a location with its computed service status
type locationResponse struct {
	models.Location
	Status string `json:"status"`
}

// ListLocations handles GET /api/v1/locations - lists the registry with due status
func ListLocations(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("name")
	if brand := c.Query("brand"); brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var locations []models.Location
	if err := query.Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load locations",
			},
		})
		return
	}

	now := time.Now()
	out := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		out = append(out, locationResponse{Location: loc, Status: loc.DueStatus(now)})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}

// CreateLocation handles POST /api/v1/locations
func CreateLocation(c *gin.Context) {
	var req LocationRequest
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

	// A coordinate is all-or-nothing
	if (req.Lat == nil) != (req.Lon == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "lat and lon must be provided together",
			},
		})
		return
	}

	location := models.Location{
		Name:        req.Name,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Province:    req.Province,
		Region:      req.Region,
		LastService: utils.ParseDate(req.LastService),
		NextService: utils.ParseDate(req.NextService),
		Equipment:   req.Equipment,
		Notes:       req.Notes,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Code:        req.Code,
		Brand:       req.Brand,
		ContactName: req.ContactName,
		Phone:       req.Phone,
	}

	db := config.GetDB()
	if err := db.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create location",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    location,
	})
}

// UpdateLocation handles PUT /api/v1/locations/:id
func UpdateLocation(c *gin.Context) {
	var req LocationRequest
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

	if (req.Lat == nil) != (req.Lon == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "lat and lon must be provided together",
			},
		})
		return
	}

	db := config.GetDB()
	var location models.Location
	if err := db.First(&location, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LOCATION_NOT_FOUND",
				"message": "Location not found",
			},
		})
		return
	}

	location.Name = req.Name
	location.Address = req.Address
	location.PostalCode = req.PostalCode
	location.City = req.City
	location.Province = req.Province
	location.Region = req.Region
	location.LastService = utils.ParseDate(req.LastService)
	location.NextService = utils.ParseDate(req.NextService)
	location.Equipment = req.Equipment
	location.Notes = req.Notes
	location.Lat = req.Lat
	location.Lon = req.Lon
	location.Code = req.Code
	location.Brand = req.Brand
	location.ContactName = req.ContactName
	location.Phone = req.Phone

	if err := db.Save(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update location",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    location,
	})
}

// DeleteLocation handles DELETE /api/v1/locations/:id
func DeleteLocation(c *gin.Context) {
	db := config.GetDB()

	res := db.Delete(&models.Location{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete location",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LOCATION_NOT_FOUND",
				"message": "Location not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LocationSnapshot is one row of an edit buffer. Every field is a
// pointer so the diff can tell "absent" from "empty" and treat two
// nulls as unchanged.
type LocationSnapshot struct {
	ID          *uint    `json:"id"`
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	PostalCode  *string  `json:"postal_code"`
	City        *string  `json:"city"`
	Province    *string  `json:"province"`
	Region      *string  `json:"region"`
	LastService *string  `json:"last_service"`
	NextService *string  `json:"next_service"`
	Equipment   *string  `json:"equipment"`
	Notes       *string  `json:"notes"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Code        *string  `json:"code"`
	Brand       *string  `json:"brand"`
	ContactName *string  `json:"contact_name"`
	Phone       *string  `json:"phone"`
}

// BulkSaveRequest carries the edited snapshot and the original it was loaded from
type BulkSaveRequest struct {
	Original []LocationSnapshot `json:"original" binding:"required"`
	Edited   []LocationSnapshot `json:"edited" binding:"required"`
}

// BulkSaveLocations handles POST /api/v1/locations/bulk-save.
// Reconciles an edited snapshot against the original one: rows present
// in the original but missing from the edit are deleted, rows without
// an id are inserted, and rows with a matching id get an update built
// from exactly the columns whose values changed. Last write wins;
// there is no version check.
func BulkSaveLocations(c *gin.Context) {
	var req BulkSaveRequest
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

	originalByID := map[uint]LocationSnapshot{}
	for _, row := range req.Original {
		if row.ID != nil {
			originalByID[*row.ID] = row
		}
	}
	editedIDs := map[uint]bool{}
	for _, row := range req.Edited {
		if row.ID != nil {
			editedIDs[*row.ID] = true
		}
	}

	deleted, updated, inserted := 0, 0, 0
	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		// Deletions: in original, gone from the edit
		for id := range originalByID {
			if editedIDs[id] {
				continue
			}
			res := tx.Delete(&models.Location{}, id)
			if res.Error != nil {
				return res.Error
			}
			deleted += int(res.RowsAffected)
		}

		for _, row := range req.Edited {
			// Inserts: no id yet
			if row.ID == nil {
				loc := row.toLocation()
				if err := tx.Create(&loc).Error; err != nil {
					return err
				}
				inserted++
				continue
			}

			// Updates: only the changed columns
			orig, ok := originalByID[*row.ID]
			if !ok {
				continue
			}
			updates := snapshotDiff(row, orig)
			if len(updates) == 0 {
				continue
			}
			res := tx.Model(&models.Location{}).Where("id = ?", *row.ID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			updated++
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save changes",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted":  deleted,
			"updated":  updated,
			"inserted": inserted,
		},
	})
}

// snapshotDiff builds the column update map for one edited row
func snapshotDiff(edited, original LocationSnapshot) map[string]interface{} {
	updates := map[string]interface{}{}
	diffStr := func(column string, newVal, oldVal *string) {
		if newVal == nil && oldVal == nil {
			return
		}
		if newVal != nil && oldVal != nil && *newVal == *oldVal {
			return
		}
		updates[column] = newVal
	}
	diffFloat := func(column string, newVal, oldVal *float64) {
		if newVal == nil && oldVal == nil {
			return
		}
		if newVal != nil && oldVal != nil && *newVal == *oldVal {
			return
		}
		updates[column] = newVal
	}
	diffDate := func(column string, newVal, oldVal *string) {
		if newVal == nil && oldVal == nil {
			return
		}
		if newVal != nil && oldVal != nil && *newVal == *oldVal {
			return
		}
		var parsed interface{}
		if newVal != nil {
			parsed = utils.ParseDate(*newVal)
		}
		updates[column] = parsed
	}

	diffStr("name", edited.Name, original.Name)
	diffStr("address", edited.Address, original.Address)
	diffStr("postal_code", edited.PostalCode, original.PostalCode)
	diffStr("city", edited.City, original.City)
	diffStr("province", edited.Province, original.Province)
	diffStr("region", edited.Region, original.Region)
	diffDate("last_service", edited.LastService, original.LastService)
	diffDate("next_service", edited.NextService, original.NextService)
	diffStr("equipment", edited.Equipment, original.Equipment)
	diffStr("notes", edited.Notes, original.Notes)
	diffFloat("lat", edited.Lat, original.Lat)
	diffFloat("lon", edited.Lon, original.Lon)
	diffStr("code", edited.Code, original.Code)
	diffStr("brand", edited.Brand, original.Brand)
	diffStr("contact_name", edited.ContactName, original.ContactName)
	diffStr("phone", edited.Phone, original.Phone)
	return updates
}

func (s LocationSnapshot) toLocation() models.Location {
	deref := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	loc := models.Location{
		Name:        deref(s.Name),
		Address:     deref(s.Address),
		PostalCode:  deref(s.PostalCode),
		City:        deref(s.City),
		Province:    deref(s.Province),
		Region:      deref(s.Region),
		Equipment:   s.Equipment,
		Notes:       s.Notes,
		Lat:         s.Lat,
		Lon:         s.Lon,
		Code:        deref(s.Code),
		Brand:       deref(s.Brand),
		ContactName: s.ContactName,
		Phone:       s.Phone,
	}
	if s.LastService != nil {
		loc.LastService = utils.ParseDate(*s.LastService)
	}
	if s.NextService != nil {
		loc.NextService = utils.ParseDate(*s.NextService)
	}
	return loc
}

// ResetLocationsRequest gates the destructive truncate behind a typed literal
type ResetLocationsRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}

// ResetLocations handles POST /api/v1/locations/reset.
// Irreversibly empties the registry and resets the id counter. The
// caller must type the literal RESET; a bare flag is not enough.
func ResetLocations(c *gin.Context) {
	var req ResetLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "RESET" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_REQUIRED",
				"message": "Type RESET in the confirm field to empty the location registry",
			},
		})
		return
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM locations").Error; err != nil {
			return err
		}
		// Rewind the id counter as well. sqlite_sequence only exists
		// once an AUTOINCREMENT table has been written to.
		if tx.Migrator().HasTable("sqlite_sequence") {
			return tx.Exec("DELETE FROM sqlite_sequence WHERE name = 'locations'").Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to reset locations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
