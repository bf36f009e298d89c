package repository

import (
	"context"
	"fmt"

	"granaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LedgerRepository persists expenses and incomes. Notification-sourced entries
// share these tables with manually entered ones; nothing here is specific to
// the pipeline beyond single-row creates scoped to one user.
type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LedgerRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns("id", "user_id", "description", "value", "category", "date", "payment_method", "is_recurring", "created_at").
		Values(expense.ID, expense.UserID, expense.Description, expense.Value, expense.Category, expense.Date, expense.PaymentMethod, expense.IsRecurring, expense.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (r *LedgerRepository) CreateIncome(ctx context.Context, income *models.Income) error {
	query := squirrel.Insert("incomes").
		Columns("id", "user_id", "description", "value", "category", "date", "is_recurring", "created_at").
		Values(income.ID, income.UserID, income.Description, income.Value, income.Category, income.Date, income.IsRecurring, income.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListExpensesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Expense, error) {
	query := squirrel.Select("id", "user_id", "description", "value", "category", "date", "payment_method", "is_recurring", "created_at").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Description, &e.Value, &e.Category, &e.Date, &e.PaymentMethod, &e.IsRecurring, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}

	return expenses, rows.Err()
}

func (r *LedgerRepository) ListIncomesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Income, error) {
	query := squirrel.Select("id", "user_id", "description", "value", "category", "date", "is_recurring", "created_at").
		From("incomes").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []*models.Income
	for rows.Next() {
		var in models.Income
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.Description, &in.Value, &in.Category, &in.Date, &in.IsRecurring, &in.CreatedAt,
		); err != nil {
			return nil, err
		}
		incomes = append(incomes, &in)
	}

	return incomes, rows.Err()
}
