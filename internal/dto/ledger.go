package dto

import (
	"time"

	"granaflow/internal/models"
)

// LedgerEntryResponse is the wire shape of a persisted expense or income.
// Kind tags the variant; payment_method is only present for expenses.
type LedgerEntryResponse struct {
	Kind          string `json:"kind"`
	ID            string `json:"id"`
	Description   string `json:"description"`
	Value         string `json:"value"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	PaymentMethod string `json:"payment_method,omitempty"`
	IsRecurring   bool   `json:"is_recurring"`
}

// FromLedgerEntry maps the domain tagged variant onto the response shape.
func FromLedgerEntry(entry models.LedgerEntry) LedgerEntryResponse {
	switch entry.Kind {
	case models.LedgerExpense:
		e := entry.Expense
		return LedgerEntryResponse{
			Kind:          string(models.LedgerExpense),
			ID:            e.ID.String(),
			Description:   e.Description,
			Value:         e.Value.String(),
			Category:      e.Category,
			Date:          e.Date.Format(time.RFC3339),
			PaymentMethod: string(e.PaymentMethod),
			IsRecurring:   e.IsRecurring,
		}
	default:
		in := entry.Income
		return LedgerEntryResponse{
			Kind:        string(models.LedgerIncome),
			ID:          in.ID.String(),
			Description: in.Description,
			Value:       in.Value.String(),
			Category:    in.Category,
			Date:        in.Date.Format(time.RFC3339),
			IsRecurring: in.IsRecurring,
		}
	}
}
