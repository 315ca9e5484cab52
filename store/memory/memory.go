// Package memory provides an in-memory DocumentStore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	docs map[generic.UserID][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[generic.UserID][]byte)}
}

// Load returns a copy of the stored document, nil when absent.
func (m *Memory) Load(_ context.Context, userID generic.UserID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[userID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

// Save replaces the user's document with a copy of document.
func (m *Memory) Save(_ context.Context, userID generic.UserID, document []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[userID] = append([]byte(nil), document...)
	return nil
}

// ListUsers returns user ids in ascending order.
func (m *Memory) ListUsers(_ context.Context) ([]generic.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]generic.UserID, 0, len(m.docs))
	for id := range m.docs {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

var (
	_ generic.DocumentStore = (*Memory)(nil)
	_ generic.UserLister    = (*Memory)(nil)
)
