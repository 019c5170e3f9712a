package theme

import "sync"

// Storage persists the raw mode value. LoadMode returns "" when nothing has
// been stored.
type Storage interface {
	LoadMode() (string, error)
	SaveMode(mode string) error
}

// MemoryStorage keeps the mode in process memory.
type MemoryStorage struct {
	mu    sync.Mutex
	value string
}

// NewMemoryStorage returns a MemoryStorage seeded with value.
func NewMemoryStorage(value string) *MemoryStorage {
	return &MemoryStorage{value: value}
}

// LoadMode implements Storage.
func (m *MemoryStorage) LoadMode() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// SaveMode implements Storage.
func (m *MemoryStorage) SaveMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = mode
	return nil
}

var _ Storage = (*MemoryStorage)(nil)
