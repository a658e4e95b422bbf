package services

import (
	"context"
	"sync"
)

// MockGeocodeService is a mock implementation of GeocodeService for testing
type MockGeocodeService struct {
	results map[string]Coordinate // address -> coordinate; absent addresses resolve to nothing
	err     error
	calls   []string
	mu      sync.Mutex
}

// NewMockGeocodeService creates a new mock geocoding service
func NewMockGeocodeService() *MockGeocodeService {
	return &MockGeocodeService{
		results: make(map[string]Coordinate),
	}
}

// SetAsMockForTesting sets this mock as the global geocoding service instance
func (m *MockGeocodeService) SetAsMockForTesting() {
	SetGeocodeService(m)
}

// AddResult registers a coordinate for an exact address string
func (m *MockGeocodeService) AddResult(address string, coord Coordinate) {
	m.mu.Lock()
	m.results[address] = coord
	m.mu.Unlock()
}

// SetError makes every lookup fail with the given error
func (m *MockGeocodeService) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Geocode resolves against the registered results
func (m *MockGeocodeService) Geocode(ctx context.Context, address string) (*Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, address)
	if m.err != nil {
		return nil, m.err
	}
	if coord, ok := m.results[address]; ok {
		c := coord
		return &c, nil
	}
	return nil, nil
}

// Calls returns the addresses looked up so far (for testing assertions)
func (m *MockGeocodeService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
