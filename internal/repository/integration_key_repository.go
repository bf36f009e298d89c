package repository

import (
	"context"
	"errors"
	"time"

	"granaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrKeyNotFound = errors.New("integration key not found")

type IntegrationKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewIntegrationKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *IntegrationKeyRepository {
	return &IntegrationKeyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *IntegrationKeyRepository) Create(ctx context.Context, key *models.IntegrationKey) error {
	query := squirrel.Insert("integration_keys").
		Columns("id", "user_id", "key", "label", "created_at").
		Values(key.ID, key.UserID, key.Key, key.Label, key.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ResolveKey maps an opaque integration key to its owning user and touches
// last_used_at on the way.
func (r *IntegrationKeyRepository) ResolveKey(ctx context.Context, key string) (uuid.UUID, error) {
	query := squirrel.Select("user_id").
		From("integration_keys").
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var userID uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrKeyNotFound
		}
		return uuid.Nil, err
	}

	update := squirrel.Update("integration_keys").
		Set("last_used_at", time.Now()).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar)

	if sql, args, err = update.ToSql(); err == nil {
		if _, err := r.db.Exec(ctx, sql, args...); err != nil {
			r.logger.Warn("Failed to touch integration key", zap.Error(err))
		}
	}

	return userID, nil
}
