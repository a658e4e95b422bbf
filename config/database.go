package config

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	// DB is the main database handle (locations, work orders, history)
	DB *gorm.DB
	// AuditDB is the login audit database handle. Kept as a separate
	// file so it can be backed up and restored independently.
	AuditDB *gorm.DB
)

// ConnectDatabase opens the main SQLite database
func ConnectDatabase() error {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "maintenance.db"
		log.Println("DATABASE_PATH not set, using default:", path)
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// ConnectAuditDatabase opens the login audit SQLite database
func ConnectAuditDatabase() error {
	path := os.Getenv("AUDIT_DATABASE_PATH")
	if path == "" {
		path = "audit.db"
		log.Println("AUDIT_DATABASE_PATH not set, using default:", path)
	}

	var err error
	AuditDB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to audit database: %w", err)
	}

	log.Println("Audit database connection established successfully")
	return nil
}

// GetDB returns the main database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the main database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}

// GetAuditDB returns the audit database instance
func GetAuditDB() *gorm.DB {
	return AuditDB
}

// SetAuditDB sets the audit database instance (primarily for testing)
func SetAuditDB(db *gorm.DB) {
	AuditDB = db
}
