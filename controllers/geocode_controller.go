package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/services"
)

// ListMissingCoordinates handles GET /api/v1/geocode/missing - locations without a coordinate
func ListMissingCoordinates(c *gin.Context) {
	db := config.GetDB()

	var locations []models.Location
	if err := db.Where("lat IS NULL OR lon IS NULL").Order("name").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load locations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    locations,
	})
}

// RunGeocodingRequest selects the locations to geocode
type RunGeocodingRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// geocodeResult reports the outcome for one location
type geocodeResult struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"` // "ok" or "failed"
	AddressUsed string `json:"address_used,omitempty"`
}

// RunGeocoding handles POST /api/v1/geocode/run.
// Looks up each selected location through the address cascade: full
// address first, then street and city, then city alone. A fixed delay
// separates requests to respect the provider's rate limit. Failures
// never abort the batch; failed rows are marked for manual retry.
func RunGeocoding(c *gin.Context) {
	var req RunGeocodingRequest
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
	var locations []models.Location
	if err := db.Where("id IN ?", req.IDs).Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load locations",
			},
		})
		return
	}

	geocoder := services.GetGeocodeService()
	delay := config.GetConfig().GeocodeDelay

	results := make([]geocodeResult, 0, len(locations))
	succeeded, failed := 0, 0
	for i, loc := range locations {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		coord, used := geocodeWithCascade(c.Request.Context(), geocoder, loc)
		if coord == nil {
			failed++
			db.Model(&models.Location{}).Where("id = ?", loc.ID).
				Update("geocode_status", "failed")
			results = append(results, geocodeResult{ID: loc.ID, Name: loc.Name, Status: "failed"})
			continue
		}

		succeeded++
		db.Model(&models.Location{}).Where("id = ?", loc.ID).Updates(map[string]interface{}{
			"lat":            coord.Lat,
			"lon":            coord.Lon,
			"geocode_status": "ok",
		})
		results = append(results, geocodeResult{ID: loc.ID, Name: loc.Name, Status: "ok", AddressUsed: used})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"succeeded": succeeded,
			"failed":    failed,
			"results":   results,
		},
	})
}

// geocodeWithCascade tries the fallback address forms in order and
// returns the first hit together with the address that produced it
func geocodeWithCascade(ctx context.Context, geocoder services.GeocodeInterface, loc models.Location) (*services.Coordinate, string) {
	full := joinAddress(loc.Address, loc.PostalCode, loc.City, loc.Province)
	simple := joinAddress(loc.Address, loc.City)
	cityOnly := joinAddress(loc.City)

	for _, address := range []string{full, simple, cityOnly} {
		if address == "" {
			continue
		}
		coord, err := geocoder.Geocode(ctx, address)
		if err != nil {
			// Provider errors count as a miss for this form; the
			// cascade and the batch both continue
			log.Printf("Geocoding %q failed: %v", address, err)
			continue
		}
		if coord != nil {
			return coord, address
		}
	}
	return nil, ""
}

func joinAddress(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// RetryGeocodingItem is one failed location with a possibly corrected address
type RetryGeocodingItem struct {
	ID         uint   `json:"id" binding:"required"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Province   string `json:"province"`
}

// RetryGeocodingRequest represents the request body for retrying failed lookups
type RetryGeocodingRequest struct {
	Items []RetryGeocodingItem `json:"items" binding:"required,min=1,dive"`
}

// RetryGeocoding handles POST /api/v1/geocode/retry.
// Re-runs failed locations with operator-corrected addresses. Only the
// full corrected address is tried; a location that still misses stays
// marked failed.
func RetryGeocoding(c *gin.Context) {
	var req RetryGeocodingRequest
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
	geocoder := services.GetGeocodeService()
	delay := config.GetConfig().GeocodeDelay

	succeeded, failed := 0, 0
	results := make([]geocodeResult, 0, len(req.Items))
	for i, item := range req.Items {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		address := joinAddress(item.Address, item.PostalCode, item.City, item.Province)
		coord, err := geocoder.Geocode(c.Request.Context(), address)
		if err != nil {
			log.Printf("Geocoding retry %q failed: %v", address, err)
		}
		if coord == nil {
			failed++
			results = append(results, geocodeResult{ID: item.ID, Status: "failed"})
			continue
		}

		succeeded++
		db.Model(&models.Location{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"lat":            coord.Lat,
			"lon":            coord.Lon,
			"geocode_status": "ok",
		})
		results = append(results, geocodeResult{ID: item.ID, Status: "ok", AddressUsed: address})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"succeeded": succeeded,
			"failed":    failed,
			"results":   results,
		},
	})
}
