package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maintroute/maintenance-api/config"
	"github.com/maintroute/maintenance-api/middleware"
	"github.com/maintroute/maintenance-api/models"
	"github.com/maintroute/maintenance-api/services"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login.
// Checks the credentials against the configured operator accounts and
// records every attempt, failed ones included, in the audit log.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Username and password are required",
			},
		})
		return
	}

	cfg := config.GetConfig()
	auditDB := config.GetAuditDB()

	user, found := cfg.FindUser(req.Username)
	if !found || user.Password != req.Password {
		record := models.LoginRecord{
			Username:  req.Username,
			LoginTime: time.Now(),
			Success:   false,
			IP:        c.ClientIP(),
		}
		auditDB.Create(&record)

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Wrong username or password",
			},
		})
		return
	}

	record := models.LoginRecord{
		Username:  user.Username,
		Role:      user.Role,
		LoginTime: time.Now(),
		Success:   true,
		IP:        c.ClientIP(),
	}
	if err := auditDB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record login",
			},
		})
		return
	}

	token, err := services.IssueSessionToken(user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue session token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":    token,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout handles POST /api/v1/auth/logout.
// Closes the operator's newest open audit row and records the session
// duration in minutes.
func Logout(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	auditDB := config.GetAuditDB()

	var record models.LoginRecord
	err = auditDB.Where("username = ? AND logout_time IS NULL AND success = ?", username, true).
		Order("login_time DESC").
		First(&record).Error
	if err != nil {
		// Nothing open to close; still a successful logout
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	now := time.Now()
	duration := now.Sub(record.LoginTime).Minutes()
	updates := map[string]interface{}{
		"logout_time":      now,
		"session_duration": duration,
	}
	if err := auditDB.Model(&record).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record logout",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"session_duration": duration},
	})
}

// LoginHistory handles GET /api/v1/auth/history - audited attempts with optional filters
func LoginHistory(c *gin.Context) {
	auditDB := config.GetAuditDB()

	query := auditDB.Order("login_time DESC")
	if username := c.Query("username"); username != "" {
		query = query.Where("username = ?", username)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("login_time >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("login_time <= ?", to)
	}

	var records []models.LoginRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load login history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

// ClearLoginHistoryRequest gates the audit wipe behind a typed literal
type ClearLoginHistoryRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}

// ClearLoginHistory handles DELETE /api/v1/auth/history.
// Admin-only, irreversible, typed RESET required.
func ClearLoginHistory(c *gin.Context) {
	var req ClearLoginHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "RESET" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_REQUIRED",
				"message": "Type RESET in the confirm field to clear the login history",
			},
		})
		return
	}

	auditDB := config.GetAuditDB()
	res := auditDB.Where("1 = 1").Delete(&models.LoginRecord{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to clear login history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": res.RowsAffected},
	})
}
