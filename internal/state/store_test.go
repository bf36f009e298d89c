package state

import (
	"fmt"
	"testing"
	"time"

	"granaflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expenseEntry(owner uuid.UUID, description string) models.LedgerEntry {
	return models.LedgerEntry{
		Kind: models.LedgerExpense,
		Expense: &models.Expense{
			ID:          uuid.New(),
			UserID:      owner,
			Description: description,
			Value:       decimal.RequireFromString("10.00"),
			Category:    "Compras",
			Date:        time.Now(),
		},
	}
}

func TestStorePushAndRecent(t *testing.T) {
	store := NewStore(0)
	owner := uuid.New()

	store.Push(expenseEntry(owner, "first"))
	store.Push(expenseEntry(owner, "second"))

	entries := store.Recent(owner, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Expense.Description, "newest first")
	assert.Equal(t, "first", entries[1].Expense.Description)
}

func TestStoreRecentLimit(t *testing.T) {
	store := NewStore(0)
	owner := uuid.New()

	for i := 0; i < 5; i++ {
		store.Push(expenseEntry(owner, fmt.Sprintf("entry-%d", i)))
	}

	assert.Len(t, store.Recent(owner, 3), 3)
	assert.Len(t, store.Recent(owner, 0), 5)
}

func TestStoreCapacityEviction(t *testing.T) {
	store := NewStore(2)
	owner := uuid.New()

	store.Push(expenseEntry(owner, "a"))
	store.Push(expenseEntry(owner, "b"))
	store.Push(expenseEntry(owner, "c"))

	entries := store.Recent(owner, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Expense.Description)
	assert.Equal(t, "b", entries[1].Expense.Description)
}

func TestStoreIsolatesUsers(t *testing.T) {
	store := NewStore(0)
	alice := uuid.New()
	bob := uuid.New()

	store.Push(expenseEntry(alice, "alice's coffee"))

	assert.Len(t, store.Recent(alice, 10), 1)
	assert.Empty(t, store.Recent(bob, 10))
}

func TestStoreIgnoresEntriesWithoutOwner(t *testing.T) {
	store := NewStore(0)

	store.Push(models.LedgerEntry{Kind: models.LedgerExpense})
	assert.Empty(t, store.Recent(uuid.Nil, 10))
}
