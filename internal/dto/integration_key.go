package dto

import "time"

type CreateIntegrationKeyRequest struct {
	Label string `json:"label"`
}

// IntegrationKeyResponse carries the plaintext key; it is only ever returned
// from the creation endpoint.
type IntegrationKeyResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
