// Package state holds the live in-memory view of recently created ledger
// entries, so the app surface reflects a notification-sourced transaction
// without an extra fetch. It subscribes to pipeline events rather than being
// mutated by the pipeline directly.
package state

import (
	"sync"

	"granaflow/internal/models"

	"github.com/google/uuid"
)

const defaultCapacity = 50

// Store keeps the most recent ledger entries per user, newest first.
type Store struct {
	mu       sync.RWMutex
	byUser   map[uuid.UUID][]models.LedgerEntry
	capacity int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		byUser:   make(map[uuid.UUID][]models.LedgerEntry),
		capacity: capacity,
	}
}

// Push records a newly created entry. Intended to be registered as a
// pipeline listener.
func (s *Store) Push(entry models.LedgerEntry) {
	owner := entry.OwnerID()
	if owner == uuid.Nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append([]models.LedgerEntry{entry}, s.byUser[owner]...)
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	s.byUser[owner] = entries
}

// Recent returns up to limit entries for the user, newest first.
func (s *Store) Recent(userID uuid.UUID, limit int) []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byUser[userID]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]models.LedgerEntry, limit)
	copy(out, entries[:limit])
	return out
}
