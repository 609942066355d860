package state

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

// MemoryStore keeps session state in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	now  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, sessionID, key string, value any) error {
	raw, err := encode(value, m.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode state")
	}
	m.mu.Lock()
	m.data[memoryKey(sessionID, key)] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID, key string, dest any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[memoryKey(sessionID, key)]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	found, err := decode(raw, dest)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode state")
	}
	return found, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.data, memoryKey(sessionID, key))
	}
	m.mu.Unlock()
	return nil
}

func memoryKey(sessionID, key string) string {
	return sessionID + "\x00" + key
}
