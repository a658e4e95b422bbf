package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
)

// ListBrands handles GET /api/v1/brands
func ListBrands(c *gin.Context) {
	db := config.GetDB()

	var brands []models.Brand
	if err := db.Order("name").Find(&brands).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load brands",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    brands,
	})
}

// CreateBrandRequest represents the request body for adding a brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateBrand handles POST /api/v1/brands.
// A duplicate name is a constraint violation reported per-operation,
// not a crash.
func CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Brand name is required",
			},
		})
		return
	}

	brand := models.Brand{Name: strings.TrimSpace(req.Name)}

	db := config.GetDB()
	if err := db.Create(&brand).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_BRAND",
					"message": "A brand with this name already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create brand",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    brand,
	})
}

// DeleteBrand handles DELETE /api/v1/brands/:id
func DeleteBrand(c *gin.Context) {
	db := config.GetDB()

	res := db.Delete(&models.Brand{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete brand",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BRAND_NOT_FOUND",
				"message": "Brand not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
