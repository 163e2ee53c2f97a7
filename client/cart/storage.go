package cart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Storage.Load for a key that was never saved.
var ErrNotFound = errors.New("cart: key not found")

// Storage is durable key/value persistence local to the shopper.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStorage keeps one JSON file per key inside Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cart dir: %w", err)
	}
	return &FileStorage{Dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save writes to a temp file and renames it over the old one so a crash
// never leaves a half-written cart behind.
func (f *FileStorage) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
