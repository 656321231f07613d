package services

import (
	"context"
	"fmt"
	"sync"
)

// MockReportStorage is an in-memory ReportStorage for tests
type MockReportStorage struct {
	files map[string][]byte // map of object key to file content
	mu    sync.RWMutex
}

// NewMockReportStorage creates an empty mock storage
func NewMockReportStorage() *MockReportStorage {
	return &MockReportStorage{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the shared report storage
func (m *MockReportStorage) SetAsMockForTesting() {
	SetReportStorage(m)
}

// Store simulates uploading a report
func (m *MockReportStorage) Store(_ context.Context, name string, content []byte) (string, error) {
	key := reportKey(name)

	m.mu.Lock()
	m.files[key] = append([]byte(nil), content...)
	m.mu.Unlock()

	return key, nil
}

// URL simulates generating a presigned URL
func (m *MockReportStorage) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.files[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("report not found in mock storage: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.eu-west-2.amazonaws.com/%s?mock=true", key), nil
}

// Delete simulates deleting a report
func (m *MockReportStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

// Files returns a copy of every stored report (for testing assertions)
func (m *MockReportStorage) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// Exists checks if a report exists in mock storage
func (m *MockReportStorage) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}
