package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"granaflow/internal/models"
	"granaflow/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	expenseJSON = `{"is_valid": true, "kind": "expense", "amount": 25.90, "description": "Compra em Uber Eats", "category": "Alimentação", "payment_method": "credit_card", "occurred_at": ""}`
	incomeJSON  = `{"is_valid": true, "kind": "income", "amount": 100.00, "description": "Pix Recebido De João", "category": "Transferência", "payment_method": "pix", "occurred_at": ""}`
	invalidJSON = `{"is_valid": false, "kind": "", "amount": 0, "description": "", "category": "", "payment_method": "", "occurred_at": ""}`
	ignoreJSON  = `{"is_valid": true, "kind": "ignore", "amount": 830.12, "description": "Pagamento De Fatura", "category": "Outros", "payment_method": "", "occurred_at": ""}`
)

func newTestPipeline(completer Completer, store LedgerStore, cfg config.PipelineConfig) *Pipeline {
	logger := zap.NewNop()
	return NewPipeline(
		NewNotificationFilter(nil, nil),
		NewClassifier(completer, time.Second, logger),
		NewReconciler(store, logger),
		cfg,
		logger,
	)
}

func nubankEvent(text string) models.NotificationEvent {
	return models.NotificationEvent{
		SourceAppID: "com.nu.production",
		Title:       "Nubank",
		Text:        text,
		Timestamp:   testFallback,
	}
}

func TestPipelineDevicePathCreatesExpense(t *testing.T) {
	completer := &mockCompleter{responses: []string{expenseJSON}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	var published []models.LedgerEntry
	var mu sync.Mutex
	p.Subscribe(func(entry models.LedgerEntry) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, entry)
	})

	event := nubankEvent("Compra aprovada no Nubank de R$ 25,90 em Uber * Eats as 14:20")
	outcome, err := p.ProcessNotification(context.Background(), event, testOwner)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, OutcomeCreated, outcome.Status)
	require.NotNil(t, outcome.Entry)
	assert.Equal(t, models.LedgerExpense, outcome.Entry.Kind)
	assert.True(t, outcome.Entry.Value().Equal(decimal.RequireFromString("25.90")))

	require.Len(t, store.expenses, 1)
	assert.Equal(t, models.PaymentCreditCard, store.expenses[0].PaymentMethod)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 1, "created entries reach subscribers")
	assert.Equal(t, testOwner, published[0].OwnerID())
}

func TestPipelineDevicePathFilterReject(t *testing.T) {
	completer := &mockCompleter{}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	event := models.NotificationEvent{
		SourceAppID: "com.whatsapp",
		Text:        "Compra aprovada de R$ 25,90",
		Timestamp:   testFallback,
	}

	outcome, err := p.ProcessNotification(context.Background(), event, testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome.Status)
	assert.Zero(t, completer.callCount(), "filter rejection never reaches the model")
	assert.Zero(t, store.writes())
}

func TestPipelineWebhookSkipsFilter(t *testing.T) {
	// Text with no filter keywords at all still classifies on the webhook
	// path: the trusted integration already decided it is bank-related.
	completer := &mockCompleter{responses: []string{incomeJSON}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	outcome, err := p.ProcessRaw(context.Background(), "texto sem palavras-chave", testFallback, testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
	require.Len(t, store.incomes, 1)
}

func TestPipelineInvalidAndIgnoredOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     OutcomeStatus
	}{
		{"invoice reminder", invalidJSON, OutcomeInvalid},
		{"invoice payment", ignoreJSON, OutcomeIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{responses: []string{tt.response}}
			store := &mockLedgerStore{}
			p := newTestPipeline(completer, store, config.PipelineConfig{})

			outcome, err := p.ProcessRaw(context.Background(), "Pague sua fatura até o dia 10", testFallback, testOwner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.Status)
			assert.Nil(t, outcome.Entry)
			assert.Zero(t, store.writes())
		})
	}
}

func TestPipelineDuplicateSubmissionsWithoutDedup(t *testing.T) {
	// Documented gap: with dedup disabled, redelivery of the same raw text
	// creates two separate ledger entries.
	completer := &mockCompleter{responses: []string{expenseJSON, expenseJSON}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	for i := 0; i < 2; i++ {
		outcome, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome.Status)
	}

	assert.Len(t, store.expenses, 2)
}

func TestPipelineDuplicateSuppressedWithDedup(t *testing.T) {
	completer := &mockCompleter{responses: []string{expenseJSON, expenseJSON}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{
		DedupEnabled: true,
		DedupWindow:  2 * time.Minute,
	})

	first, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, first.Status)

	second, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback.Add(10*time.Second), testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Status)

	assert.Len(t, store.expenses, 1)
	assert.Equal(t, 1, completer.callCount(), "duplicates are suppressed before the model call")
}

func TestPipelineRedeliveryAfterFailureWithDedup(t *testing.T) {
	// A failed run must not burn the fingerprint: the caller is told to
	// re-deliver the original event, and that redelivery has to be
	// reprocessed, not suppressed as a duplicate.
	completer := &mockCompleter{
		errs:      []error{errors.New("connection refused"), nil},
		responses: []string{"", expenseJSON},
	}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{
		DedupEnabled: true,
		DedupWindow:  2 * time.Minute,
	})

	_, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.Error(t, err)
	assert.Zero(t, store.writes())

	outcome, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback.Add(5*time.Second), testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
	assert.Len(t, store.expenses, 1)
}

func TestPipelineRedeliveryAfterPersistenceFailureWithDedup(t *testing.T) {
	completer := &mockCompleter{responses: []string{expenseJSON, expenseJSON}}
	store := &mockLedgerStore{failWith: errors.New("connection reset")}
	p := newTestPipeline(completer, store, config.PipelineConfig{
		DedupEnabled: true,
		DedupWindow:  2 * time.Minute,
	})

	_, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.ErrorIs(t, err, ErrPersistence)

	store.failWith = nil
	outcome, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback.Add(5*time.Second), testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
	assert.Len(t, store.expenses, 1)
}

func TestPipelineRetriesTransientFailureOnce(t *testing.T) {
	completer := &mockCompleter{
		errs:      []error{errors.New("connection refused"), nil},
		responses: []string{"", expenseJSON},
	}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{RetryTransient: true})

	outcome, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
	assert.Equal(t, 2, completer.callCount())
}

func TestPipelineNoRetryByDefault(t *testing.T) {
	completer := &mockCompleter{errs: []error{errors.New("connection refused")}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	_, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClassification)
	assert.Equal(t, 1, completer.callCount())
}

func TestPipelineNoRetryOnParseFailure(t *testing.T) {
	completer := &mockCompleter{responses: []string{"não é JSON"}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{RetryTransient: true})

	_, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.Error(t, err)
	assert.Equal(t, 1, completer.callCount(), "replaying bad output is pointless")
}

func TestPipelinePersistenceErrorSurfaces(t *testing.T) {
	completer := &mockCompleter{responses: []string{expenseJSON}}
	store := &mockLedgerStore{failWith: errors.New("constraint violation")}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	outcome, err := p.ProcessRaw(context.Background(), "Compra aprovada de R$ 25,90", testFallback, testOwner)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, outcome)
}

func TestListenerWorkerDrainsSource(t *testing.T) {
	completer := &mockCompleter{responses: []string{expenseJSON}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	events := make(chan models.NotificationEvent, 2)
	events <- nubankEvent("Compra aprovada no Nubank de R$ 25,90 em Uber Eats")
	close(events)

	worker := NewListenerWorker(chanSource{events}, p, testOwner, zap.NewNop())
	worker.Run(context.Background())

	assert.Len(t, store.expenses, 1)
}

func TestListenerWorkerDropsFailedEvents(t *testing.T) {
	// No interactive caller on the device path: classification failures are
	// logged and the event is dropped.
	completer := &mockCompleter{errs: []error{errors.New("timeout")}}
	store := &mockLedgerStore{}
	p := newTestPipeline(completer, store, config.PipelineConfig{})

	events := make(chan models.NotificationEvent, 1)
	events <- nubankEvent("Compra aprovada de R$ 10,00")
	close(events)

	worker := NewListenerWorker(chanSource{events}, p, testOwner, zap.NewNop())
	worker.Run(context.Background())

	assert.Zero(t, store.writes())
}

type chanSource struct {
	ch chan models.NotificationEvent
}

func (s chanSource) Events() <-chan models.NotificationEvent {
	return s.ch
}
