package main

import (
	"context"
	"log"

	"granaflow/pkg/config"
	"granaflow/pkg/logger"
	"granaflow/pkg/postgres"

	"go.uber.org/zap"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS integration_keys (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		key TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		last_used_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		value NUMERIC(14,2) NOT NULL CHECK (value >= 0),
		category TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		payment_method TEXT NOT NULL,
		is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS incomes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		value NUMERIC(14,2) NOT NULL CHECK (value >= 0),
		category TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_incomes_user_date ON incomes (user_id, date DESC)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying schema migrations...")

	for i, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Migration statement failed",
				zap.Int("statement", i),
				zap.Error(err),
			)
		}
	}

	appLogger.Info("Schema migrations applied successfully")
}
