package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appConfig "github.com/maintroute/maintenance-api/config"
)

// ErrBackupNotFound is returned when the remote copy of a file does not exist
var ErrBackupNotFound = errors.New("backup file not found")

// BackupInterface defines the interface for the database backup store.
// Implementations move whole database files as opaque blobs.
type BackupInterface interface {
	UploadFile(ctx context.Context, name string, data []byte) error
	DownloadFile(ctx context.Context, name string) ([]byte, error)
	CheckConnection(ctx context.Context) error
}

var backupServiceInstance BackupInterface

// InitBackupService initializes the backup provider selected by
// configuration. With no provider configured it returns nil and
// backups stay disabled.
func InitBackupService() (BackupInterface, error) {
	cfg := appConfig.GetConfig()

	switch cfg.BackupProvider {
	case "github":
		backupServiceInstance = NewGitHubBackupService(cfg)
		return backupServiceInstance, nil
	case "s3":
		svc, err := NewS3BackupService(cfg)
		if err != nil {
			return nil, err
		}
		backupServiceInstance = svc
		return backupServiceInstance, nil
	case "":
		backupServiceInstance = nil
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown backup provider %q", cfg.BackupProvider)
	}
}

// GetBackupService returns the initialized backup service instance
func GetBackupService() BackupInterface {
	return backupServiceInstance
}

// SetBackupService sets the backup service instance (primarily for testing)
func SetBackupService(service BackupInterface) {
	backupServiceInstance = service
}

const backupTimestampFile = "last_backup_time.txt"

// SaveBackupTimestamp records the time of the last successful backup locally
func SaveBackupTimestamp() error {
	return os.WriteFile(backupTimestampFile, []byte(time.Now().Format(time.RFC3339)), 0o644)
}

// GetBackupTimestamp returns the time of the last successful backup,
// or nil when no backup has been recorded
func GetBackupTimestamp() *time.Time {
	data, err := os.ReadFile(backupTimestampFile)
	if err != nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, string(data))
	if err != nil {
		return nil
	}
	return &t
}

// RestoreIfMissing downloads each named file from the backup store
// only when it is absent locally. A local file is never overwritten.
// Returns the names that were restored.
func RestoreIfMissing(ctx context.Context, svc BackupInterface, names []string) ([]string, error) {
	var restored []string
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			continue
		}

		data, err := svc.DownloadFile(ctx, name)
		if errors.Is(err, ErrBackupNotFound) {
			continue
		}
		if err != nil {
			return restored, fmt.Errorf("failed to download %s: %w", name, err)
		}

		if err := os.WriteFile(name, data, 0o644); err != nil {
			return restored, fmt.Errorf("failed to write %s: %w", name, err)
		}
		restored = append(restored, name)
	}
	return restored, nil
}
