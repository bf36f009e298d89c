package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"granaflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyStore persists issued integration keys.
type KeyStore interface {
	Create(ctx context.Context, key *models.IntegrationKey) error
}

// IntegrationKeyService issues the opaque keys trusted integrations use to
// authenticate against the webhook.
type IntegrationKeyService struct {
	keys   KeyStore
	logger *zap.Logger
}

func NewIntegrationKeyService(keys KeyStore, logger *zap.Logger) *IntegrationKeyService {
	return &IntegrationKeyService{
		keys:   keys,
		logger: logger,
	}
}

// Issue generates and persists a new integration key for the user. The
// plaintext key is returned exactly once, at creation.
func (s *IntegrationKeyService) Issue(ctx context.Context, userID uuid.UUID, label string) (*models.IntegrationKey, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate integration key: %w", err)
	}

	key := &models.IntegrationKey{
		ID:        uuid.New(),
		UserID:    userID,
		Key:       hex.EncodeToString(raw),
		Label:     label,
		CreatedAt: time.Now(),
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("Integration key issued",
		zap.String("user_id", userID.String()),
		zap.String("label", label),
	)

	return key, nil
}
