package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

const accountColumns = "id, name, type, balance_cents, opening_balance_cents"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Balance.Cents, &a.OpeningBalance.Cents)
	return a, err
}

// CreateAccount inserts a new account row.
func (q *Queries) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, balance_cents, opening_balance_cents) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Type), a.Balance.Cents, a.OpeningBalance.Cents)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetAccount loads one account; core.ErrNotFound when the id is unknown.
func (q *Queries) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns all accounts in creation order.
func (q *Queries) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites name, type and both balance fields.
func (q *Queries) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, balance_cents = ?, opening_balance_cents = ? WHERE id = ?`,
		a.Name, string(a.Type), a.Balance.Cents, a.OpeningBalance.Cents, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return notFoundIfNoRows(res, "account", a.ID)
}

// AdjustAccountBalance applies one signed delta to an account's balance.
// This is the only write path for balances inside the mutation engine.
func (q *Queries) AdjustAccountBalance(ctx context.Context, id string, delta core.Money) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
		delta.Cents, id)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return notFoundIfNoRows(res, "account", id)
}

// DeleteAccount removes the account row.
func (q *Queries) DeleteAccount(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return notFoundIfNoRows(res, "account", id)
}

// SumOnBudgetBalances totals the balances of DEBIT and SAVINGS accounts,
// the pool the budget's available-funds figure draws from.
func (q *Queries) SumOnBudgetBalances(ctx context.Context) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE type IN ('DEBIT', 'SAVINGS')`).
		Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum on-budget balances: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// SumSourceEffects totals the stored signed amounts of all transactions
// funded by the account. Together with SumIncomingTransferMagnitude it lets
// the audit recompute balance - opening = Σ effects.
func (q *Queries) SumSourceEffects(ctx context.Context, accountID string) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE account_id = ?`,
		accountID).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum source effects: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// SumIncomingTransferMagnitude totals |amount| over transfers into the
// account. The caller signs it by the account type's polarity rule.
func (q *Queries) SumIncomingTransferMagnitude(ctx context.Context, accountID string) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(ABS(amount_cents)), 0) FROM transactions WHERE to_account_id = ?`,
		accountID).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incoming transfers: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func notFoundIfNoRows(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, core.ErrNotFound)
	}
	return nil
}
