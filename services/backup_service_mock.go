package services

import (
	"context"
	"sync"
)

// MockBackupService is an in-memory implementation of BackupInterface for testing
type MockBackupService struct {
	files   map[string][]byte
	connErr error
	mu      sync.RWMutex
}

// NewMockBackupService creates a new mock backup service
func NewMockBackupService() *MockBackupService {
	return &MockBackupService{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global backup service instance
func (m *MockBackupService) SetAsMockForTesting() {
	SetBackupService(m)
}

// SeedFile preloads a remote file (for testing restore paths)
func (m *MockBackupService) SeedFile(name string, data []byte) {
	m.mu.Lock()
	m.files[name] = data
	m.mu.Unlock()
}

// SetConnectionError makes CheckConnection fail with the given error
func (m *MockBackupService) SetConnectionError(err error) {
	m.mu.Lock()
	m.connErr = err
	m.mu.Unlock()
}

// UploadFile stores the file in mock storage
func (m *MockBackupService) UploadFile(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[name] = buf
	return nil
}

// DownloadFile retrieves a file from mock storage
func (m *MockBackupService) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, ErrBackupNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// CheckConnection reports the configured connection error, if any
func (m *MockBackupService) CheckConnection(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connErr
}

// StoredFiles returns the uploaded files (for testing assertions)
func (m *MockBackupService) StoredFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}
