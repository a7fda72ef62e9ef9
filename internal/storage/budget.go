package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

// UpsertAssignment writes the planned amount for one (month, category)
// pair, replacing any existing row for that pair.
func (q *Queries) UpsertAssignment(ctx context.Context, a core.BudgetAssignment) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_assignments (id, month, category_id, amount_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (month, category_id) DO UPDATE SET amount_cents = excluded.amount_cents`,
		a.ID, a.Month.String(), a.CategoryID, a.Amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

func (q *Queries) GetAssignment(ctx context.Context, month core.Month, categoryID string) (core.BudgetAssignment, error) {
	var (
		a   core.BudgetAssignment
		key string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, month, category_id, amount_cents FROM budget_assignments WHERE month = ? AND category_id = ?`,
		month.String(), categoryID).
		Scan(&a.ID, &key, &a.CategoryID, &a.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetAssignment{}, fmt.Errorf("assignment %s/%s: %w", month, categoryID, core.ErrNotFound)
	}
	if err != nil {
		return core.BudgetAssignment{}, fmt.Errorf("get assignment: %w", err)
	}
	a.Month = month
	return a, nil
}

func (q *Queries) ListAssignmentsByMonth(ctx context.Context, month core.Month) ([]core.BudgetAssignment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, category_id, amount_cents FROM budget_assignments WHERE month = ?`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []core.BudgetAssignment
	for rows.Next() {
		a := core.BudgetAssignment{Month: month}
		if err := rows.Scan(&a.ID, &a.CategoryID, &a.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// SumAssignmentsTotal totals every assignment ever made. The available
// funds figure subtracts this from on-budget balances.
func (q *Queries) SumAssignmentsTotal(ctx context.Context) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM budget_assignments`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum assignments: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// DeleteAssignmentsByCategory removes every month's assignment for a
// category. Used when a category is deleted.
func (q *Queries) DeleteAssignmentsByCategory(ctx context.Context, categoryID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM budget_assignments WHERE category_id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("delete assignments by category: %w", err)
	}
	return nil
}
