package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"granaflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPersistence marks a ledger write the store rejected. A valid classified
// transaction must never be dropped silently; callers surface this upward.
var ErrPersistence = errors.New("persistence failed")

// LedgerStore is the persistence capability the reconciler writes through.
type LedgerStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	CreateIncome(ctx context.Context, income *models.Income) error
}

// Reconciler applies business rules to a classification result and persists
// the resulting ledger entry under the owning user, or deliberately does
// nothing for invalid and ignored events.
type Reconciler struct {
	store  LedgerStore
	logger *zap.Logger
}

func NewReconciler(store LedgerStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// Reconcile turns a classification result into a persisted LedgerEntry.
// A nil entry with nil error is the normal outcome for invalid or ignored
// events: no write happened and none should have. The classifier's kind
// decision is trusted; no deduplication happens here.
func (r *Reconciler) Reconcile(ctx context.Context, result models.ClassificationResult, ownerID uuid.UUID, fallback time.Time) (*models.LedgerEntry, error) {
	if !result.Recordable() {
		r.logger.Debug("Classification not recordable, skipping",
			zap.Bool("is_valid", result.IsValid),
			zap.String("kind", string(result.Kind)),
		)
		return nil, nil
	}

	date := result.OccurredAt
	if date.IsZero() {
		date = fallback
	}

	now := time.Now()

	switch result.Kind {
	case models.KindExpense:
		expense := &models.Expense{
			ID:            uuid.New(),
			UserID:        ownerID,
			Description:   result.Description,
			Value:         result.Amount,
			Category:      result.Category,
			Date:          date,
			PaymentMethod: result.PaymentMethod,
			IsRecurring:   false,
			CreatedAt:     now,
		}
		if err := r.store.CreateExpense(ctx, expense); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		r.logger.Info("Expense recorded from notification",
			zap.String("user_id", ownerID.String()),
			zap.String("category", expense.Category),
			zap.String("value", expense.Value.String()),
		)
		return &models.LedgerEntry{Kind: models.LedgerExpense, Expense: expense}, nil

	case models.KindIncome:
		income := &models.Income{
			ID:          uuid.New(),
			UserID:      ownerID,
			Description: result.Description,
			Value:       result.Amount,
			Category:    result.Category,
			Date:        date,
			IsRecurring: false,
			CreatedAt:   now,
		}
		if err := r.store.CreateIncome(ctx, income); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		r.logger.Info("Income recorded from notification",
			zap.String("user_id", ownerID.String()),
			zap.String("category", income.Category),
			zap.String("value", income.Value.String()),
		)
		return &models.LedgerEntry{Kind: models.LedgerIncome, Income: income}, nil

	default:
		// Unreachable after validation, but the reconciler refuses to guess.
		return nil, fmt.Errorf("%w: unsupported transaction kind %q", ErrPersistence, result.Kind)
	}
}
