package controllers

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/services"
)

// backupFileNames returns the database files covered by backup/restore
func backupFileNames() []string {
	cfg := config.GetConfig()
	return []string{cfg.DatabasePath, cfg.AuditDatabasePath}
}

// RunBackup handles POST /api/v1/backup.
// Uploads both database files to the configured backup store. Files
// missing locally are skipped with a warning; one failed upload does
// not stop the other file.
func RunBackup(c *gin.Context) {
	svc := services.GetBackupService()
	if svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_DISABLED",
				"message": "No backup provider is configured",
			},
		})
		return
	}

	type fileResult struct {
		Name   string `json:"name"`
		Status string `json:"status"` // "uploaded", "missing" or "failed"
		Error  string `json:"error,omitempty"`
	}

	results := []fileResult{}
	uploaded := 0
	for _, name := range backupFileNames() {
		data, err := os.ReadFile(name)
		if err != nil {
			results = append(results, fileResult{Name: name, Status: "missing"})
			continue
		}

		if err := svc.UploadFile(c.Request.Context(), name, data); err != nil {
			log.Printf("Backup of %s failed: %v", name, err)
			results = append(results, fileResult{Name: name, Status: "failed", Error: err.Error()})
			continue
		}
		uploaded++
		results = append(results, fileResult{Name: name, Status: "uploaded"})
	}

	if uploaded > 0 {
		if err := services.SaveBackupTimestamp(); err != nil {
			log.Printf("Failed to record backup timestamp: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"uploaded": uploaded,
			"files":    results,
		},
	})
}

// RunRestore handles POST /api/v1/backup/restore.
// Downloads database files from the backup store, but only those
// absent locally. An existing local file is never overwritten.
func RunRestore(c *gin.Context) {
	svc := services.GetBackupService()
	if svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_DISABLED",
				"message": "No backup provider is configured",
			},
		})
		return
	}

	restored, err := services.RestoreIfMissing(c.Request.Context(), svc, backupFileNames())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RESTORE_ERROR",
				"message": "Restore failed",
				"details": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"restored": restored},
	})
}

// BackupStatus handles GET /api/v1/backup/status.
// Verifies the backup store is reachable and reports the last recorded
// backup time.
func BackupStatus(c *gin.Context) {
	svc := services.GetBackupService()
	cfg := config.GetConfig()

	status := gin.H{
		"provider":    cfg.BackupProvider,
		"last_backup": services.GetBackupTimestamp(),
	}

	if svc == nil {
		status["connected"] = false
		status["provider"] = ""
	} else if err := svc.CheckConnection(c.Request.Context()); err != nil {
		status["connected"] = false
		status["error"] = err.Error()
	} else {
		status["connected"] = true
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}
