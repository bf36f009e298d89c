package dto

// WebhookRequest is the body a trusted integration posts: raw notification
// text plus the capture time in epoch milliseconds.
type WebhookRequest struct {
	RawText   string `json:"rawText" validate:"required"`
	Timestamp int64  `json:"timestamp" validate:"required"`
}

// ClassificationPayload echoes the classifier's verdict back to the webhook
// caller when no entry was created.
type ClassificationPayload struct {
	IsValid       bool   `json:"is_valid"`
	Kind          string `json:"kind,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// WebhookIgnoredResponse is the 200 body for irrelevant or ignored events.
type WebhookIgnoredResponse struct {
	Message string                 `json:"message"`
	Data    *ClassificationPayload `json:"data,omitempty"`
}

// WebhookCreatedResponse is the 201 body for a created ledger entry.
type WebhookCreatedResponse struct {
	Success     bool                `json:"success"`
	Transaction LedgerEntryResponse `json:"transaction"`
}
