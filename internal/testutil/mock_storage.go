// mock_storage.go - Mock storage implementations for testing
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// MockStorage implements storage.Store for testing. File metadata lives in
// memory; contents are written under a temp directory so parsers can read
// them by path.
type MockStorage struct {
	files   map[string]*models.FileInfo
	tempDir string
	mu      sync.RWMutex

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewMockStorage creates a mock storage writing into tempDir
func NewMockStorage(tempDir string) *MockStorage {
	return &MockStorage{
		files:   make(map[string]*models.FileInfo),
		tempDir: tempDir,
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.AddFile(generateTestID(), name, data), nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *file
	return &cp, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.files))
	for _, file := range m.files {
		cp := *file
		files = append(files, &cp)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(m.files, id)
	return os.Remove(m.path(file))
}

func (m *MockStorage) SetStatus(id, status string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	file.Status = status
	cp := *file
	return &cp, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return m.path(file), nil
}

func (m *MockStorage) path(file *models.FileInfo) string {
	return filepath.Join(m.tempDir, file.ID+"_"+file.Name)
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile writes the file to disk and adds it to the mock
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}
	if err := os.WriteFile(m.path(file), data, 0644); err != nil {
		panic(fmt.Sprintf("failed to write test file: %v", err))
	}
	m.files[id] = file
	cp := *file
	return &cp
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}

// MockSignatureStore implements storage.SignatureStore in memory, keyed by
// the same safe filename the real stores use.
type MockSignatureStore struct {
	images map[string][]byte
	mu     sync.RWMutex

	// LookupErr, when set, is returned by Lookup for every name.
	LookupErr error
}

// NewMockSignatureStore creates an empty signature store
func NewMockSignatureStore() *MockSignatureStore {
	return &MockSignatureStore{images: make(map[string][]byte)}
}

func (m *MockSignatureStore) Lookup(_ context.Context, name string) ([]byte, error) {
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	key, err := storage.SignatureKey(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.images[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrSignatureNotFound, name)
	}
	return data, nil
}

func (m *MockSignatureStore) Has(ctx context.Context, name string) (bool, error) {
	_, err := m.Lookup(ctx, name)
	if errors.Is(err, storage.ErrSignatureNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *MockSignatureStore) Save(_ context.Context, name string, png []byte) (string, error) {
	key, err := storage.SignatureKey(name)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[key] = png
	return key + ".png", nil
}

// Get returns the stored bytes for a safe key
func (m *MockSignatureStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.images[key]
	return data, ok
}

// Ensure MockSignatureStore implements storage.SignatureStore
var _ storage.SignatureStore = (*MockSignatureStore)(nil)
