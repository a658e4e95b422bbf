package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMigrationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db
}

func TestMigrateDatabase_CreatesSchema(t *testing.T) {
	db := openMigrationTestDB(t)

	assert.NoError(t, MigrateDatabase(db))

	for _, table := range []string{"locations", "municipalities", "brands", "work_orders", "work_order_history", "schema_migrations"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}

	// The reporting view is queryable
	var count int64
	assert.NoError(t, db.Raw("SELECT COUNT(*) FROM history_report").Scan(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMigrateDatabase_Idempotent(t *testing.T) {
	db := openMigrationTestDB(t)

	assert.NoError(t, MigrateDatabase(db))
	assert.NoError(t, MigrateDatabase(db))

	// Each step was recorded exactly once
	var applied int64
	db.Table("schema_migrations").Count(&applied)
	assert.Equal(t, int64(len(mainMigrations)), applied)
}

func TestMigrateDatabase_RecordsVersionsInOrder(t *testing.T) {
	db := openMigrationTestDB(t)

	assert.NoError(t, MigrateDatabase(db))

	var versions []int
	db.Table("schema_migrations").Order("version").Pluck("version", &versions)
	for i, v := range versions {
		assert.Equal(t, i+1, v)
	}
}
