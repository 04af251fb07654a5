package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/varun160398/auto-invoice-portal/internal/textnorm"
)

// ErrSignatureNotFound is returned when no signature exists for a name.
var ErrSignatureNotFound = errors.New("signature not found")

// SignatureExtensions are tried in order when looking up a signature.
var SignatureExtensions = []string{".png", ".jpg", ".jpeg"}

// SignatureStore holds one signature image per expert, keyed by the
// filesystem-safe form of the expert's name.
type SignatureStore interface {
	// Lookup returns the stored image or ErrSignatureNotFound.
	Lookup(ctx context.Context, name string) ([]byte, error)
	Has(ctx context.Context, name string) (bool, error)
	// Save stores a PNG and returns its key.
	Save(ctx context.Context, name string, png []byte) (string, error)
}

// SignatureKey returns the base key for name, or an error when nothing of
// the name survives the filename transform.
func SignatureKey(name string) (string, error) {
	base := textnorm.SafeFilename(name)
	if base == "" {
		return "", fmt.Errorf("name %q has no filename-safe characters", name)
	}
	return base, nil
}

// LocalSignatureStore keeps signatures as files in a directory.
type LocalSignatureStore struct {
	dir string
}

// NewLocalSignatureStore creates dir if needed.
func NewLocalSignatureStore(dir string) (*LocalSignatureStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating signature directory: %w", err)
	}
	return &LocalSignatureStore{dir: dir}, nil
}

func (s *LocalSignatureStore) find(name string) (string, error) {
	base, err := SignatureKey(name)
	if err != nil {
		return "", ErrSignatureNotFound
	}
	for _, ext := range SignatureExtensions {
		path := filepath.Join(s.dir, base+ext)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", ErrSignatureNotFound
}

func (s *LocalSignatureStore) Lookup(_ context.Context, name string) ([]byte, error) {
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	return data, nil
}

func (s *LocalSignatureStore) Has(_ context.Context, name string) (bool, error) {
	_, err := s.find(name)
	if errors.Is(err, ErrSignatureNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Save writes png as <safe name>.png, replacing any earlier upload.
func (s *LocalSignatureStore) Save(_ context.Context, name string, png []byte) (string, error) {
	base, err := SignatureKey(name)
	if err != nil {
		return "", err
	}
	key := base + ".png"

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating signature file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing signature: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing signature: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("storing signature: %w", err)
	}
	return key, nil
}
