package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

// TransactionDetail is a transaction joined with the display names the
// list view needs, so callers don't fan out per-row lookups.
type TransactionDetail struct {
	core.Transaction
	AccountName  string
	PayeeName    string
	CategoryName string
}

const transactionColumns = "id, date, account_id, payee_id, category_id, amount_cents, memo, to_account_id"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t        core.Transaction
		date     string
		category sql.NullString
		target   sql.NullString
	)
	err := row.Scan(&t.ID, &date, &t.AccountID, &t.PayeeID, &category, &t.Amount.Cents, &t.Memo, &target)
	if err != nil {
		return core.Transaction{}, err
	}
	d, perr := core.ParseDate(date)
	if perr != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, perr)
	}
	t.Date = d
	t.CategoryID = orEmpty(category)
	t.ToAccountID = orEmpty(target)
	return t, nil
}

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, account_id, payee_id, category_id, amount_cents, memo, to_account_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), t.AccountID, t.PayeeID, nullable(t.CategoryID),
		t.Amount.Cents, t.Memo, nullable(t.ToAccountID))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns transactions newest-first, joined with account,
// payee and category names. An empty accountID lists every account.
func (q *Queries) ListTransactions(ctx context.Context, accountID string) ([]TransactionDetail, error) {
	const base = `
		SELECT t.id, t.date, t.account_id, t.payee_id, t.category_id, t.amount_cents, t.memo, t.to_account_id,
		       a.name, p.name, COALESCE(c.name, '')
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN payees p ON p.id = t.payee_id
		LEFT JOIN categories c ON c.id = t.category_id`

	var (
		rows *sql.Rows
		err  error
	)
	if accountID == "" {
		rows, err = q.db.QueryContext(ctx, base+` ORDER BY t.date DESC, t.created_at DESC`)
	} else {
		rows, err = q.db.QueryContext(ctx,
			base+` WHERE t.account_id = ? OR t.to_account_id = ? ORDER BY t.date DESC, t.created_at DESC`,
			accountID, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var details []TransactionDetail
	for rows.Next() {
		var (
			d        TransactionDetail
			date     string
			category sql.NullString
			target   sql.NullString
		)
		err := rows.Scan(&d.ID, &date, &d.AccountID, &d.PayeeID, &category, &d.Amount.Cents, &d.Memo, &target,
			&d.AccountName, &d.PayeeName, &d.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		day, perr := core.ParseDate(date)
		if perr != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, perr)
		}
		d.Date = day
		d.CategoryID = orEmpty(category)
		d.ToAccountID = orEmpty(target)
		details = append(details, d)
	}
	return details, rows.Err()
}

// UpdateTransaction overwrites every mutable field of the row.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, account_id = ?, payee_id = ?, category_id = ?, amount_cents = ?, memo = ?, to_account_id = ?
		 WHERE id = ?`,
		t.Date.String(), t.AccountID, t.PayeeID, nullable(t.CategoryID),
		t.Amount.Cents, t.Memo, nullable(t.ToAccountID), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return notFoundIfNoRows(res, "transaction", t.ID)
}

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return notFoundIfNoRows(res, "transaction", id)
}

func (q *Queries) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions by category: %w", err)
	}
	return n, nil
}

func (q *Queries) CountTransactionsByPayee(ctx context.Context, payeeID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE payee_id = ?`, payeeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions by payee: %w", err)
	}
	return n, nil
}

// CountAccountDependents counts transactions that touch the account through
// any leg: funding it, transferring into it, or naming its shadow payee.
func (q *Queries) CountAccountDependents(ctx context.Context, accountID, shadowPayeeID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ? OR to_account_id = ? OR payee_id = ?`,
		accountID, accountID, shadowPayeeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account dependents: %w", err)
	}
	return n, nil
}

// ReassignTransactionsSource moves every transaction funded by one account
// onto another.
func (q *Queries) ReassignTransactionsSource(ctx context.Context, fromAccountID, toAccountID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET account_id = ? WHERE account_id = ?`,
		toAccountID, fromAccountID)
	if err != nil {
		return fmt.Errorf("reassign transaction source: %w", err)
	}
	return nil
}

// ReassignTransactionsPayee repoints every transaction naming one payee at
// another payee and its account, keeping the transfer leg consistent with
// the payee's shadow link.
func (q *Queries) ReassignTransactionsPayee(ctx context.Context, fromPayeeID, toPayeeID, toAccountID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET payee_id = ?, to_account_id = ? WHERE payee_id = ?`,
		toPayeeID, nullable(toAccountID), fromPayeeID)
	if err != nil {
		return fmt.Errorf("reassign transaction payee: %w", err)
	}
	return nil
}

// ReassignTransactionsCategory moves every transaction in one category to
// another.
func (q *Queries) ReassignTransactionsCategory(ctx context.Context, fromCategoryID, toCategoryID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE category_id = ?`,
		toCategoryID, fromCategoryID)
	if err != nil {
		return fmt.Errorf("reassign transaction category: %w", err)
	}
	return nil
}

// SumSpentByCategory totals outflow magnitudes for a category inside a
// month. Dates are ISO strings, so the range compare is lexicographic.
func (q *Queries) SumSpentByCategory(ctx context.Context, categoryID string, month core.Month) (core.Money, error) {
	start, end := month.Range()
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(-amount_cents), 0) FROM transactions
		 WHERE category_id = ? AND amount_cents < 0 AND date >= ? AND date < ?`,
		categoryID, start.Format("2006-01-02"), end.Format("2006-01-02")).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum spent by category: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
