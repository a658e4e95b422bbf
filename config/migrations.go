package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/maintroute/maintenance-api/models"
)

// schemaMigration records one applied migration step
type schemaMigration struct {
	Version   int    `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// migrationStep is a single idempotent schema change. Steps are
// identified by version and applied exactly once, in order.
type migrationStep struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

// mainMigrations is the ordered migration list for the main database.
// New steps are appended with the next version number and never
// reordered or edited once released.
var mainMigrations = []migrationStep{
	{
		Version: 1,
		Name:    "create core tables",
		Run: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Location{},
				&models.Municipality{},
				&models.Brand{},
				&models.WorkOrderRow{},
				&models.HistoryEntry{},
			)
		},
	},
	{
		Version: 2,
		Name:    "add location contact columns",
		Run: func(tx *gorm.DB) error {
			// Older databases predate the contact fields. AutoMigrate
			// covers fresh installs; this keeps the step explicit for
			// databases restored from old backups.
			for _, col := range []string{"contact_name", "phone"} {
				if tx.Migrator().HasColumn(&models.Location{}, col) {
					continue
				}
				if err := tx.Migrator().AddColumn(&models.Location{}, col); err != nil {
					return fmt.Errorf("add locations.%s: %w", col, err)
				}
			}
			return nil
		},
	},
	{
		Version: 3,
		Name:    "add geocode status column",
		Run: func(tx *gorm.DB) error {
			if tx.Migrator().HasColumn(&models.Location{}, "geocode_status") {
				return nil
			}
			return tx.Migrator().AddColumn(&models.Location{}, "geocode_status")
		},
	},
	{
		Version: 4,
		Name:    "create history report view",
		Run: func(tx *gorm.DB) error {
			// Read-only reporting view over archived orders joined to
			// the location registry. The join is by display name, the
			// same match Complete uses.
			return tx.Exec(`
				CREATE VIEW IF NOT EXISTS history_report AS
				SELECT h.order_number,
				       h.order_id,
				       h.location_name,
				       h.technician,
				       h.scheduled_date,
				       h.scheduled_time,
				       h.total_distance_km,
				       h.archived_at,
				       l.brand,
				       l.city,
				       l.province,
				       l.last_service,
				       l.next_service
				FROM work_order_history h
				LEFT JOIN locations l ON l.name = h.location_name
			`).Error
		},
	},
}

// MigrateDatabase applies all pending migration steps to the main
// database. Safe to call on every startup.
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, step := range mainMigrations {
		var applied int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", step.Version).Count(&applied).Error; err != nil {
			return fmt.Errorf("failed to check migration %d: %w", step.Version, err)
		}
		if applied > 0 {
			continue
		}

		log.Printf("Applying migration %d: %s", step.Version, step.Name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Name, err)
		}
	}

	return nil
}

// MigrateAuditDatabase prepares the login audit database
func MigrateAuditDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.LoginRecord{}); err != nil {
		return fmt.Errorf("failed to migrate audit database: %w", err)
	}
	return nil
}
