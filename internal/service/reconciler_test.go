package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"granaflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockLedgerStore records creates and can be told to fail.
type mockLedgerStore struct {
	mu       sync.Mutex
	expenses []*models.Expense
	incomes  []*models.Income
	failWith error
}

func (m *mockLedgerStore) CreateExpense(_ context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.expenses = append(m.expenses, expense)
	return nil
}

func (m *mockLedgerStore) CreateIncome(_ context.Context, income *models.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.incomes = append(m.incomes, income)
	return nil
}

func (m *mockLedgerStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expenses) + len(m.incomes)
}

var (
	testOwner    = uuid.New()
	testFallback = time.Date(2024, 6, 15, 14, 20, 0, 0, time.UTC)
)

func expenseResult() models.ClassificationResult {
	return models.ClassificationResult{
		IsValid:       true,
		Kind:          models.KindExpense,
		Amount:        decimal.RequireFromString("25.90"),
		Description:   "Compra em Uber Eats",
		Category:      "Alimentação",
		PaymentMethod: models.PaymentCreditCard,
	}
}

func TestReconcileInvalidIsNoOp(t *testing.T) {
	store := &mockLedgerStore{}
	r := NewReconciler(store, zap.NewNop())

	entry, err := r.Reconcile(context.Background(), models.ClassificationResult{IsValid: false}, testOwner, testFallback)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Zero(t, store.writes())
}

func TestReconcileIgnoreIsNoOp(t *testing.T) {
	store := &mockLedgerStore{}
	r := NewReconciler(store, zap.NewNop())

	result := models.ClassificationResult{
		IsValid: true,
		Kind:    models.KindIgnore,
		Amount:  decimal.RequireFromString("830.12"),
	}

	entry, err := r.Reconcile(context.Background(), result, testOwner, testFallback)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Zero(t, store.writes())
}

func TestReconcileExpense(t *testing.T) {
	store := &mockLedgerStore{}
	r := NewReconciler(store, zap.NewNop())

	entry, err := r.Reconcile(context.Background(), expenseResult(), testOwner, testFallback)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, models.LedgerExpense, entry.Kind)
	require.NotNil(t, entry.Expense)
	assert.Nil(t, entry.Income)

	require.Len(t, store.expenses, 1)
	expense := store.expenses[0]
	assert.Equal(t, testOwner, expense.UserID)
	assert.True(t, expense.Value.Equal(decimal.RequireFromString("25.90")))
	assert.Equal(t, "Alimentação", expense.Category)
	assert.Equal(t, models.PaymentCreditCard, expense.PaymentMethod)
	assert.False(t, expense.IsRecurring, "notification-sourced entries are never recurring")
	assert.True(t, testFallback.Equal(expense.Date), "zero OccurredAt falls back to event timestamp")
}

func TestReconcileExpenseKeepsExplicitDate(t *testing.T) {
	store := &mockLedgerStore{}
	r := NewReconciler(store, zap.NewNop())

	result := expenseResult()
	explicit := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	result.OccurredAt = explicit

	_, err := r.Reconcile(context.Background(), result, testOwner, testFallback)
	require.NoError(t, err)
	assert.True(t, explicit.Equal(store.expenses[0].Date))
}

func TestReconcileIncome(t *testing.T) {
	store := &mockLedgerStore{}
	r := NewReconciler(store, zap.NewNop())

	result := models.ClassificationResult{
		IsValid:     true,
		Kind:        models.KindIncome,
		Amount:      decimal.RequireFromString("100.00"),
		Description: "Pix Recebido De João",
		Category:    "Transferência",
	}

	entry, err := r.Reconcile(context.Background(), result, testOwner, testFallback)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, models.LedgerIncome, entry.Kind)
	require.NotNil(t, entry.Income)
	assert.Nil(t, entry.Expense)

	require.Len(t, store.incomes, 1)
	income := store.incomes[0]
	assert.Equal(t, testOwner, income.UserID)
	assert.True(t, income.Value.Equal(decimal.RequireFromString("100")))
	assert.False(t, income.IsRecurring)
	assert.Empty(t, store.expenses)
}

func TestReconcilePersistenceFailure(t *testing.T) {
	store := &mockLedgerStore{failWith: errors.New("connection reset")}
	r := NewReconciler(store, zap.NewNop())

	entry, err := r.Reconcile(context.Background(), expenseResult(), testOwner, testFallback)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, entry)
}
