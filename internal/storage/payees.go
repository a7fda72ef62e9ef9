package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

const payeeColumns = "id, name, icon, account_id"

func scanPayee(row interface{ Scan(...any) error }) (core.Payee, error) {
	var (
		p       core.Payee
		account sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Icon, &account)
	p.AccountID = orEmpty(account)
	return p, err
}

func (q *Queries) CreatePayee(ctx context.Context, p core.Payee) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payees (id, name, icon, account_id) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Icon, nullable(p.AccountID))
	if err != nil {
		return fmt.Errorf("insert payee: %w", err)
	}
	return nil
}

func (q *Queries) GetPayee(ctx context.Context, id string) (core.Payee, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE id = ?`, id)
	p, err := scanPayee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payee{}, fmt.Errorf("payee %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Payee{}, fmt.Errorf("get payee: %w", err)
	}
	return p, nil
}

// GetPayeeByAccount finds the shadow payee owned by an account.
func (q *Queries) GetPayeeByAccount(ctx context.Context, accountID string) (core.Payee, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE account_id = ?`, accountID)
	p, err := scanPayee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payee{}, fmt.Errorf("shadow payee for account %s: %w", accountID, core.ErrNotFound)
	}
	if err != nil {
		return core.Payee{}, fmt.Errorf("get payee by account: %w", err)
	}
	return p, nil
}

func (q *Queries) ListPayees(ctx context.Context) ([]core.Payee, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+payeeColumns+` FROM payees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list payees: %w", err)
	}
	defer rows.Close()

	var payees []core.Payee
	for rows.Next() {
		p, err := scanPayee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payee: %w", err)
		}
		payees = append(payees, p)
	}
	return payees, rows.Err()
}

func (q *Queries) UpdatePayee(ctx context.Context, p core.Payee) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE payees SET name = ?, icon = ? WHERE id = ?`,
		p.Name, p.Icon, p.ID)
	if err != nil {
		return fmt.Errorf("update payee: %w", err)
	}
	return notFoundIfNoRows(res, "payee", p.ID)
}

func (q *Queries) DeletePayee(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payee: %w", err)
	}
	return notFoundIfNoRows(res, "payee", id)
}

// PayeeNameInUse reports whether another payee already carries the name.
// Shadow payees of the excluded account don't count against themselves,
// which keeps account renames from tripping over their own payee.
func (q *Queries) PayeeNameInUse(ctx context.Context, name, excludeAccountID string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payees WHERE name = ? AND (account_id IS NULL OR account_id != ?)`,
		name, excludeAccountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("payee name in use: %w", err)
	}
	return n > 0, nil
}
