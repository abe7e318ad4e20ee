package storage

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is an in-process Store. It backs the console client and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	owners    map[string]map[string][]byte
	pingError error
	saveError error
	saves     int
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners: make(map[string]map[string][]byte),
	}
}

// SetPingError configures Ping to fail with err; nil restores success.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every subsequent Save and SaveBatch fail with err
// without writing anything; nil restores success.
func (m *MemoryStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Saves returns how many Save/SaveBatch calls succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, ownerID, recordID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.owners[ownerID][recordID]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, ownerID, recordID string, data []byte) error {
	return m.SaveBatch(ctx, ownerID, map[string][]byte{recordID: data})
}

func (m *MemoryStore) SaveBatch(ctx context.Context, ownerID string, records map[string][]byte) error {
	if ownerID == "" {
		return errors.New("owner id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	recs, ok := m.owners[ownerID]
	if !ok {
		recs = make(map[string][]byte)
		m.owners[ownerID] = recs
	}
	for id, data := range records {
		cp := make([]byte, len(data))
		copy(cp, data)
		recs[id] = cp
	}
	m.saves++
	return nil
}

// Records returns the record ids stored for ownerID.
func (m *MemoryStore) Records(ownerID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.owners[ownerID]))
	for id := range m.owners[ownerID] {
		ids = append(ids, id)
	}
	return ids
}
