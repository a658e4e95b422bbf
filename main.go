package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/controllers"
	"github.com/maintroute/maintenance-api/middleware"
	"github.com/maintroute/maintenance-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Maintenance Scheduling API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the backup provider and, before opening any database,
	// pull down files that exist remotely but not locally. An existing
	// local file is never overwritten.
	backupSvc, err := services.InitBackupService()
	if err != nil {
		log.Fatalf("Failed to initialize backup service: %v", err)
	}
	if backupSvc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		restored, err := services.RestoreIfMissing(ctx, backupSvc,
			[]string{cfg.DatabasePath, cfg.AuditDatabasePath})
		cancel()
		if err != nil {
			log.Printf("Startup restore failed: %v", err)
		}
		for _, name := range restored {
			log.Printf("Restored %s from backup", name)
		}
	}

	// Connect to the databases
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.ConnectAuditDatabase(); err != nil {
		log.Fatalf("Failed to connect to audit database: %v", err)
	}

	// Apply pending schema migrations
	if err := config.MigrateDatabase(config.GetDB()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := config.MigrateAuditDatabase(config.GetAuditDB()); err != nil {
		log.Fatalf("Failed to migrate audit database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize services
	services.InitGeocodeService()

	// Initialize Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.POST("/auth/login", controllers.Login)

		// Everything else requires a valid session token
		auth := v1.Group("")
		auth.Use(middleware.EnsureValidToken(cfg))
		{
			auth.POST("/auth/logout", controllers.Logout)
			auth.GET("/auth/history", controllers.LoginHistory)
			auth.DELETE("/auth/history", middleware.RequireRole("admin"), controllers.ClearLoginHistory)

			auth.GET("/locations", controllers.ListLocations)
			auth.POST("/locations", controllers.CreateLocation)
			auth.PUT("/locations/:id", controllers.UpdateLocation)
			auth.DELETE("/locations/:id", controllers.DeleteLocation)
			auth.POST("/locations/bulk-save", controllers.BulkSaveLocations)
			auth.POST("/locations/reset", middleware.RequireRole("admin"), controllers.ResetLocations)
			auth.GET("/locations/export", controllers.ExportLocations)
			auth.POST("/locations/import", controllers.ImportLocations)

			auth.GET("/municipalities", controllers.ListMunicipalities)
			auth.POST("/municipalities/import", controllers.ImportMunicipalities)

			auth.GET("/brands", controllers.ListBrands)
			auth.POST("/brands", controllers.CreateBrand)
			auth.DELETE("/brands/:id", controllers.DeleteBrand)

			auth.POST("/workorders", controllers.CreateWorkOrder)
			auth.GET("/workorders", controllers.ListWorkOrders)
			auth.PUT("/workorders/:id/rows", controllers.EditWorkOrderRows)
			auth.DELETE("/workorders/:id/rows", controllers.DeleteWorkOrderRows)
			auth.DELETE("/workorders/:id", controllers.DeleteWorkOrder)
			auth.POST("/workorders/:id/complete", controllers.CompleteWorkOrder)
			auth.GET("/workorders/:id/pdf", controllers.GetWorkOrderPDF)

			auth.GET("/history", controllers.ListHistory)
			auth.GET("/history/report", controllers.HistoryReport)
			auth.GET("/history/export", controllers.ExportHistory)
			auth.DELETE("/history/rows", middleware.RequireRole("admin"), controllers.DeleteHistoryRows)
			auth.DELETE("/history", middleware.RequireRole("admin"), controllers.ClearHistory)

			auth.GET("/geocode/missing", controllers.ListMissingCoordinates)
			auth.POST("/geocode/run", controllers.RunGeocoding)
			auth.POST("/geocode/retry", controllers.RetryGeocoding)

			auth.POST("/backup", controllers.RunBackup)
			auth.POST("/backup/restore", controllers.RunRestore)
			auth.GET("/backup/status", controllers.BackupStatus)
		}
	}

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Maintenance Scheduling API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
