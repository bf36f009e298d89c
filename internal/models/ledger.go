package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a persisted outgoing transaction. Notification-sourced expenses
// are never marked recurring automatically.
type Expense struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Description   string          `db:"description"`
	Value         decimal.Decimal `db:"value"`
	Category      string          `db:"category"`
	Date          time.Time       `db:"date"`
	PaymentMethod PaymentMethod   `db:"payment_method"`
	IsRecurring   bool            `db:"is_recurring"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Income is a persisted incoming transaction. Incomes carry no payment method.
type Income struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Description string          `db:"description"`
	Value       decimal.Decimal `db:"value"`
	Category    string          `db:"category"`
	Date        time.Time       `db:"date"`
	IsRecurring bool            `db:"is_recurring"`
	CreatedAt   time.Time       `db:"created_at"`
}

// LedgerKind tags which variant a LedgerEntry holds.
type LedgerKind string

const (
	LedgerExpense LedgerKind = "expense"
	LedgerIncome  LedgerKind = "income"
)

// LedgerEntry is the reconciler's tagged result: exactly one of Expense or
// Income is set, selected by Kind. Callers dispatch on the tag, never on the
// presence of a payment-method field.
type LedgerEntry struct {
	Kind    LedgerKind
	Expense *Expense
	Income  *Income
}

// OwnerID returns the owning user of whichever variant is set.
func (e LedgerEntry) OwnerID() uuid.UUID {
	if e.Kind == LedgerExpense && e.Expense != nil {
		return e.Expense.UserID
	}
	if e.Income != nil {
		return e.Income.UserID
	}
	return uuid.Nil
}

// Value returns the monetary amount of whichever variant is set.
func (e LedgerEntry) Value() decimal.Decimal {
	if e.Kind == LedgerExpense && e.Expense != nil {
		return e.Expense.Value
	}
	if e.Income != nil {
		return e.Income.Value
	}
	return decimal.Zero
}
