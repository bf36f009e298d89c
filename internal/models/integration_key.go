package models

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationKey lets a trusted integration (device listener, bank webhook
// relay) authenticate without a JWT. The key resolves to its owning user
// before the pipeline runs.
type IntegrationKey struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	Key        string     `db:"key"`
	Label      string     `db:"label"`
	CreatedAt  time.Time  `db:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
}
