package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/middleware"
	"github.com/maintroute/maintenance-api/models"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware injects the context values EnsureValidToken would
// set after validating a real session token
func mockAuthMiddleware(username, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		mockClaims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: username},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		}

		c.Set("username", username)
		c.Set("validated_claims", mockClaims)
		c.Set("role", role)
		c.Next()
	}
}

// setupMainTestDB opens an in-memory database and runs the full
// migration chain so the view and all tables exist
func setupMainTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := config.MigrateDatabase(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	return response
}

func TestCreateWorkOrder_SequentialNumbering(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	for i := 1; i <= 3; i++ {
		w := postJSON(t, router, "/workorders", map[string]interface{}{
			"stops": []map[string]interface{}{
				{"location_name": fmt.Sprintf("Store %d", i)},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(i), data["order_number"])
		assert.NotEmpty(t, data["order_id"])
	}
}

func TestCreateWorkOrder_NumberContinuesFromExisting(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.WorkOrderRow{OrderID: "existing", OrderNumber: 41, LocationName: "Old Store"})

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	w := postJSON(t, router, "/workorders", map[string]interface{}{
		"stops": []map[string]interface{}{{"location_name": "New Store"}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["order_number"])
}

func TestCreateWorkOrder_Validation(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no stops", map[string]interface{}{}},
		{"empty stops", map[string]interface{}{"stops": []map[string]interface{}{}}},
		{"stop without location name", map[string]interface{}{
			"stops": []map[string]interface{}{{"technician": "Rossi"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/workorders", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			response := parseResponse(t, w)
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errorData["code"])

			// Nothing was written
			var count int64
			db.Model(&models.WorkOrderRow{}).Count(&count)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestCreateWorkOrder_SharedFieldsAcrossRows(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	distance := 25.5
	w := postJSON(t, router, "/workorders", map[string]interface{}{
		"stops": []map[string]interface{}{
			{"location_name": "Store A", "technician": "Rossi"},
			{"location_name": "Store B", "technician": "Rossi"},
			{"location_name": "Store C", "technician": "Rossi"},
		},
		"total_distance_km": distance,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var rows []models.WorkOrderRow
	db.Order("id").Find(&rows)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, rows[0].OrderID, row.OrderID)
		assert.Equal(t, rows[0].OrderNumber, row.OrderNumber)
		assert.Equal(t, distance, row.TotalDistanceKm)
	}
}

func TestCreateWorkOrder_DistanceComputedFromCoordinates(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	w := postJSON(t, router, "/workorders", map[string]interface{}{
		"stops": []map[string]interface{}{
			{"location_name": "Store A", "lat": 45.0, "lon": 9.0},
			{"location_name": "Store B", "lat": 45.1, "lon": 9.1},
			{"location_name": "No coordinate"},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	// The stop without a coordinate is skipped by the calculator
	assert.InDelta(t, 13.6, data["total_distance_km"].(float64), 0.1)
}

func TestCreateWorkOrder_TimeNormalization(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/workorders", CreateWorkOrder)

	w := postJSON(t, router, "/workorders", map[string]interface{}{
		"stops": []map[string]interface{}{
			{"location_name": "Store A", "scheduled_time": "09:00"},
			{"location_name": "Store B", "scheduled_time": 0.5},
			{"location_name": "Store C", "scheduled_time": "noon"},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var rows []models.WorkOrderRow
	db.Order("id").Find(&rows)
	assert.Len(t, rows, 3)

	if assert.NotNil(t, rows[0].ScheduledTime) {
		assert.Equal(t, "09:00:00", *rows[0].ScheduledTime)
	}
	if assert.NotNil(t, rows[1].ScheduledTime) {
		assert.Equal(t, "12:00:00", *rows[1].ScheduledTime)
	}
	assert.Nil(t, rows[2].ScheduledTime)
}

func TestEditWorkOrderRows(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	row := models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A"}
	db.Create(&row)

	router := setupTestRouter()
	router.PUT("/workorders/:id/rows", EditWorkOrderRows)

	technician := "Bianchi"
	date := "2024-06-15"
	body, _ := json.Marshal(map[string]interface{}{
		"rows": []map[string]interface{}{
			{
				"id":             row.ID,
				"technician":     technician,
				"scheduled_date": date,
				"scheduled_time": "14:30",
			},
		},
	})
	req, _ := http.NewRequest(http.MethodPut, "/workorders/order-1/rows", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["updated"])

	var updated models.WorkOrderRow
	db.First(&updated, row.ID)
	assert.Equal(t, technician, updated.Technician)
	if assert.NotNil(t, updated.ScheduledDate) {
		assert.Equal(t, "2024-06-15", updated.ScheduledDate.Format("2006-01-02"))
	}
	if assert.NotNil(t, updated.ScheduledTime) {
		assert.Equal(t, "14:30:00", *updated.ScheduledTime)
	}
}

func TestEditWorkOrderRows_UnparseableTimeBecomesNull(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	existing := "09:00:00"
	row := models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A", ScheduledTime: &existing}
	db.Create(&row)

	router := setupTestRouter()
	router.PUT("/workorders/:id/rows", EditWorkOrderRows)

	body, _ := json.Marshal(map[string]interface{}{
		"rows": []map[string]interface{}{
			{"id": row.ID, "scheduled_time": "late afternoon"},
		},
	})
	req, _ := http.NewRequest(http.MethodPut, "/workorders/order-1/rows", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.WorkOrderRow
	db.First(&updated, row.ID)
	assert.Nil(t, updated.ScheduledTime)
}

func TestDeleteWorkOrderRows(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	rows := []models.WorkOrderRow{
		{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A"},
		{OrderID: "order-1", OrderNumber: 1, LocationName: "Store B"},
		{OrderID: "order-1", OrderNumber: 1, LocationName: "Store C"},
	}
	for i := range rows {
		db.Create(&rows[i])
	}

	router := setupTestRouter()
	router.DELETE("/workorders/:id/rows", DeleteWorkOrderRows)

	body, _ := json.Marshal(map[string]interface{}{
		"row_ids": []uint{rows[1].ID},
	})
	req, _ := http.NewRequest(http.MethodDelete, "/workorders/order-1/rows", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var remaining []models.WorkOrderRow
	db.Order("id").Find(&remaining)
	assert.Len(t, remaining, 2)
	// Surviving rows keep their ids and number
	assert.Equal(t, rows[0].ID, remaining[0].ID)
	assert.Equal(t, rows[2].ID, remaining[1].ID)
	assert.Equal(t, 1, remaining[0].OrderNumber)
}

func TestDeleteWorkOrder(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A"})
	db.Create(&models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store B"})

	router := setupTestRouter()
	router.DELETE("/workorders/:id", DeleteWorkOrder)

	req, _ := http.NewRequest(http.MethodDelete, "/workorders/order-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.WorkOrderRow{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// A second delete finds nothing
	req, _ = http.NewRequest(http.MethodDelete, "/workorders/order-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "ORDER_NOT_FOUND", errorData["code"])
}

func TestCompleteWorkOrder(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	// Two registry entries sharing the order's first stop name; both
	// receive the propagated update
	db.Create(&models.Location{Name: "Store A", Address: "Via Roma 1", City: "Milano"})
	db.Create(&models.Location{Name: "Store A", Address: "Via Roma 2", City: "Torino"})
	db.Create(&models.Location{Name: "Store B", Address: "Via Po 3", City: "Roma"})

	scheduled := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	contact := "Mario Verdi"
	phone := "0212345678"
	rows := []models.WorkOrderRow{
		{OrderID: "order-1", OrderNumber: 7, LocationName: "Store A", ScheduledDate: &scheduled, ContactName: &contact, Phone: &phone},
		{OrderID: "order-1", OrderNumber: 7, LocationName: "Store B", ScheduledDate: &scheduled},
	}
	for i := range rows {
		db.Create(&rows[i])
	}

	router := setupTestRouter()
	router.POST("/workorders/:id/complete", CompleteWorkOrder)

	req, _ := http.NewRequest(http.MethodPost, "/workorders/order-1/complete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["archived"])

	// Active store is drained
	var activeCount int64
	db.Model(&models.WorkOrderRow{}).Count(&activeCount)
	assert.Equal(t, int64(0), activeCount)

	// Archive holds a frozen copy of every row
	var entries []models.HistoryEntry
	db.Order("id").Find(&entries)
	assert.Len(t, entries, 2)
	assert.Equal(t, "order-1", entries[0].OrderID)
	assert.Equal(t, 7, entries[0].OrderNumber)
	assert.Equal(t, "Store A", entries[0].LocationName)
	assert.False(t, entries[0].ArchivedAt.IsZero())

	// Both same-name locations got the schedule and contact data
	var locations []models.Location
	db.Where("name = ?", "Store A").Find(&locations)
	assert.Len(t, locations, 2)
	for _, loc := range locations {
		if assert.NotNil(t, loc.LastService) {
			assert.Equal(t, "2024-06-15", loc.LastService.Format("2006-01-02"))
		}
		if assert.NotNil(t, loc.ContactName) {
			assert.Equal(t, contact, *loc.ContactName)
		}
	}

	// The other location is untouched
	var other models.Location
	db.Where("name = ?", "Store B").First(&other)
	assert.Nil(t, other.LastService)
}

func TestCompleteWorkOrder_SecondCallIsNoOp(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A"})

	router := setupTestRouter()
	router.POST("/workorders/:id/complete", CompleteWorkOrder)

	req, _ := http.NewRequest(http.MethodPost, "/workorders/order-1/complete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodPost, "/workorders/order-1/complete", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	errorData := parseResponse(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "ORDER_NOT_FOUND", errorData["code"])

	// No duplicate archive entries
	var historyCount int64
	db.Model(&models.HistoryEntry{}).Count(&historyCount)
	assert.Equal(t, int64(1), historyCount)
}

func TestGetWorkOrderPDF(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	scheduled := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	morning := "09:00:00"
	db.Create(&models.WorkOrderRow{
		OrderID: "order-1", OrderNumber: 3, LocationName: "Store A",
		Address: "Via Roma 1", City: "Milano", Province: "MI",
		ScheduledDate: &scheduled, ScheduledTime: &morning,
		TotalDistanceKm: 18.4,
	})

	router := setupTestRouter()
	router.GET("/workorders/:id/pdf", GetWorkOrderPDF)

	req, _ := http.NewRequest(http.MethodGet, "/workorders/order-1/pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "work_order_3.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")), "response should be a PDF document")
}

func TestGetWorkOrderPDF_NotFound(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/workorders/:id/pdf", GetWorkOrderPDF)

	req, _ := http.NewRequest(http.MethodGet, "/workorders/missing/pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListWorkOrders_GroupsRowsByOrder(t *testing.T) {
	db := setupMainTestDB(t)
	config.SetDB(db)

	db.Create(&models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store A", TotalDistanceKm: 10})
	db.Create(&models.WorkOrderRow{OrderID: "order-1", OrderNumber: 1, LocationName: "Store B", TotalDistanceKm: 10})
	db.Create(&models.WorkOrderRow{OrderID: "order-2", OrderNumber: 2, LocationName: "Store C", TotalDistanceKm: 5})

	router := setupTestRouter()
	router.GET("/workorders", ListWorkOrders)

	req, _ := http.NewRequest(http.MethodGet, "/workorders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "order-1", first["order_id"])
	assert.Equal(t, float64(1), first["order_number"])
	assert.Len(t, first["rows"].([]interface{}), 2)

	second := data[1].(map[string]interface{})
	assert.Equal(t, "order-2", second["order_id"])
	assert.Len(t, second["rows"].([]interface{}), 1)
}
