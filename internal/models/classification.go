package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the classifier's verdict on what a notification represents.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
	// KindIgnore marks a real financial event that must not be recorded,
	// e.g. an invoice payment settling purchases already recorded one by one.
	KindIgnore TransactionKind = "ignore"
)

// ValidTransactionKind reports whether s is a member of the kind enum.
func ValidTransactionKind(s string) bool {
	switch TransactionKind(s) {
	case KindExpense, KindIncome, KindIgnore:
		return true
	}
	return false
}

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebit      PaymentMethod = "debit"
	PaymentPix        PaymentMethod = "pix"
	PaymentTransfer   PaymentMethod = "transfer"
)

// ValidPaymentMethod reports whether s is a member of the payment-method enum.
func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentCreditCard, PaymentDebit, PaymentPix, PaymentTransfer:
		return true
	}
	return false
}

// CategoryFallback is assigned when the classifier produces a category outside
// the fixed vocabulary.
const CategoryFallback = "Outros"

// Categories is the fixed vocabulary the classifier must choose from.
var Categories = []string{
	"Alimentação",
	"Transporte",
	"Moradia",
	"Saúde",
	"Educação",
	"Lazer",
	"Compras",
	"Serviços",
	"Salário",
	"Transferência",
	CategoryFallback,
}

// KnownCategory reports whether c belongs to the category vocabulary.
func KnownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ClassificationResult is the structured output of the transaction classifier.
//
// IsValid=false or Kind=ignore means no ledger entry may be created. A zero
// OccurredAt means the source text carried no date and the caller must fall
// back to the event's reference timestamp.
type ClassificationResult struct {
	IsValid       bool
	Kind          TransactionKind
	Amount        decimal.Decimal
	Description   string
	Category      string
	PaymentMethod PaymentMethod
	OccurredAt    time.Time
}

// Recordable reports whether the result should produce a ledger entry.
func (r ClassificationResult) Recordable() bool {
	return r.IsValid && r.Kind != KindIgnore
}
