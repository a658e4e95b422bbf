package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/models"
)

func TestCreateBrand(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/brands", CreateBrand)

	w := postJSON(t, router, "/brands", map[string]interface{}{"name": "Acme"})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Acme", data["name"])
}

func TestCreateBrand_DuplicateName(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.Brand{Name: "Acme"})

	router := setupTestRouter()
	router.POST("/brands", CreateBrand)

	w := postJSON(t, router, "/brands", map[string]interface{}{"name": "Acme"})

	assert.Equal(t, http.StatusConflict, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "DUPLICATE_BRAND", errorData["code"])

	var count int64
	db.Model(&models.Brand{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteBrand(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	brand := models.Brand{Name: "Acme"}
	db.Create(&brand)

	router := setupTestRouter()
	router.DELETE("/brands/:id", DeleteBrand)

	req, _ := http.NewRequest(http.MethodDelete, "/brands/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodDelete, "/brands/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBrands(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.Brand{Name: "Globex"})
	db.Create(&models.Brand{Name: "Acme"})

	router := setupTestRouter()
	router.GET("/brands", ListBrands)

	req, _ := http.NewRequest(http.MethodGet, "/brands", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2)
	// Sorted by name
	assert.Equal(t, "Acme", data[0].(map[string]interface{})["name"])
}
