package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportLocations handles GET /api/v1/locations/export - the registry as a workbook
func ExportLocations(c *gin.Context) {
	db := config.GetDB()

	var locations []models.Location
	if err := db.Order("name").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load locations",
			},
		})
		return
	}

	data, err := services.GenerateLocationsWorkbook(locations)
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

	c.Header("Content-Disposition", "attachment; filename=locations.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}

// openUpload pulls the uploaded workbook out of the multipart form
func openUpload(c *gin.Context) (multipart.File, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A workbook must be uploaded in the \"file\" field",
			},
		})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to open uploaded file",
			},
		})
		return nil, false
	}
	return file, true
}

// ImportLocations handles POST /api/v1/locations/import.
// Validates the workbook's column set before touching the database,
// then appends all rows in one transaction.
func ImportLocations(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	locations, err := services.ParseLocationsWorkbook(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_WORKBOOK",
				"message": "Workbook could not be imported",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range locations {
			if err := tx.Create(&locations[i]).Error; err != nil {
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
				"message": "Failed to import locations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"imported": len(locations)},
	})
}

// ListMunicipalities handles GET /api/v1/municipalities with an optional name filter
func ListMunicipalities(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("name")
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", name+"%")
	}

	var municipalities []models.Municipality
	if err := query.Limit(100).Find(&municipalities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load municipalities",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    municipalities,
	})
}

// ImportMunicipalities handles POST /api/v1/municipalities/import.
// One-time setup load of the place reference set; a re-import replaces
// the whole table.
func ImportMunicipalities(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	municipalities, err := services.ParseMunicipalitiesWorkbook(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_WORKBOOK",
				"message": "Workbook could not be imported",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM municipalities").Error; err != nil {
			return err
		}
		for i := range municipalities {
			if err := tx.Create(&municipalities[i]).Error; err != nil {
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
				"message": "Failed to import municipalities",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"imported": len(municipalities)},
	})
}
