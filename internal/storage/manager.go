package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// ErrNotFound is returned for unknown workbook ids.
var ErrNotFound = errors.New("file not found")

// Store defines the interface for uploaded workbook storage.
type Store interface {
	Save(name string, r io.Reader) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	SetStatus(id, status string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.FileInfo
}

// metaExt marks the msgpack file holding a workbook's FileInfo.
const metaExt = ".meta"

// NewLocalStore creates a new LocalStore and indexes workbooks saved by a
// previous run.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	s := &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.FileInfo),
	}
	if err := s.loadExisting(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadExisting reads every metadata file whose workbook is still on disk.
// Unreadable entries are skipped.
func (s *LocalStore) loadExisting() error {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return fmt.Errorf("scanning upload directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != metaExt {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.uploadDir, entry.Name()))
		if err != nil {
			continue
		}
		var info models.FileInfo
		if err := msgpack.Unmarshal(data, &info); err != nil || info.ID == "" {
			continue
		}
		if _, err := os.Stat(s.dataPath(&info)); err != nil {
			continue
		}
		s.files[info.ID] = &info
	}
	return nil
}

func (s *LocalStore) dataPath(info *models.FileInfo) string {
	return filepath.Join(s.uploadDir, diskName(info.ID, info.Name))
}

func (s *LocalStore) metaPath(id string) string {
	return filepath.Join(s.uploadDir, id+metaExt)
}

// writeMeta persists info next to its workbook.
func (s *LocalStore) writeMeta(info *models.FileInfo) error {
	data, err := msgpack.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.ID), data, 0644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// diskName keeps the upload's extension so stored workbooks stay
// recognisable on disk.
func diskName(id, name string) string {
	return id + strings.ToLower(filepath.Ext(name))
}

// Save saves a file to the local filesystem.
func (s *LocalStore) Save(name string, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, diskName(id, name))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}
	if err := s.writeMeta(info); err != nil {
		os.Remove(path)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	cp := *info
	return &cp, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	cp := *info
	return &cp, nil
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		cp := *info
		list = append(list, &cp)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(s.dataPath(info)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting metadata: %w", err)
	}

	delete(s.files, id)
	return nil
}

// SetStatus records the outcome of parsing a stored workbook.
func (s *LocalStore) SetStatus(id, status string) (*models.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	info.Status = status
	if err := s.writeMeta(info); err != nil {
		return nil, err
	}

	cp := *info
	return &cp, nil
}

// GetFilePath returns the absolute path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.dataPath(info), nil
}
