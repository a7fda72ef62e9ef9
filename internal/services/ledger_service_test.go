package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/storage"
)

type testEnv struct {
	store      *storage.Store
	ledger     *LedgerService
	accounts   *AccountService
	categories *CategoryService
	budget     *BudgetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	budget := NewBudgetService(store)
	return &testEnv{
		store:      store,
		ledger:     NewLedgerService(store, nil, budget),
		accounts:   NewAccountService(store, nil),
		categories: NewCategoryService(store, budget),
		budget:     budget,
	}
}

func (e *testEnv) account(t *testing.T, name string, accType core.AccountType, cents int64) core.Account {
	t.Helper()
	a, err := e.accounts.CreateAccount(context.Background(), AccountInput{
		Name: name, Type: accType, Balance: core.Money{Cents: cents},
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) payee(t *testing.T, name string) core.Payee {
	t.Helper()
	p := core.Payee{ID: name + "-id", Name: name}
	require.NoError(t, e.store.Queries().CreatePayee(context.Background(), p))
	return p
}

func (e *testEnv) category(t *testing.T, name string) core.Category {
	t.Helper()
	g, err := e.categories.CreateCategoryGroup(context.Background(), name+" group")
	require.NoError(t, err)
	c, err := e.categories.CreateCategory(context.Background(), CategoryInput{Name: name, GroupID: g.ID})
	require.NoError(t, err)
	return c
}

func (e *testEnv) shadowPayee(t *testing.T, accountID string) core.Payee {
	t.Helper()
	p, err := e.store.Queries().GetPayeeByAccount(context.Background(), accountID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) balance(t *testing.T, accountID string) int64 {
	t.Helper()
	a, err := e.store.Queries().GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return a.Balance.Cents
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCreateExpenseDebitsSource(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 10000)
	shop := e.payee(t, "Shop")
	groceries := e.category(t, "Groceries")

	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-10"),
		AccountID:  acc.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 3000},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-3000), tx.Amount.Cents, "stored amount is the signed source effect")
	assert.Equal(t, "", tx.ToAccountID)
	assert.Equal(t, int64(7000), e.balance(t, acc.ID))
}

func TestCreateIncomeCreditsSource(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 10000)
	employer := e.payee(t, "Employer")

	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:      mustDate(t, "2025-03-01"),
		AccountID: acc.ID,
		PayeeID:   employer.ID,
		Amount:    core.Money{Cents: 250000},
		IsIncome:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(250000), tx.Amount.Cents)
	assert.Equal(t, "", tx.CategoryID, "income is uncategorized")
	assert.Equal(t, int64(260000), e.balance(t, acc.ID))
}

func TestTransferToCreditMovesBothDown(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	src := e.account(t, "Checking", core.AccountDebit, 10000)
	card := e.account(t, "Card", core.AccountCredit, -5000)

	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:      mustDate(t, "2025-03-05"),
		AccountID: src.ID,
		PayeeID:   e.shadowPayee(t, card.ID).ID,
		Amount:    core.Money{Cents: 3000},
	})
	require.NoError(t, err)

	assert.Equal(t, card.ID, tx.ToAccountID)
	assert.Equal(t, int64(7000), e.balance(t, src.ID))
	assert.Equal(t, int64(-8000), e.balance(t, card.ID))
}

func TestTransferToSavingsCreditsTarget(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	src := e.account(t, "Checking", core.AccountDebit, 10000)
	pot := e.account(t, "Savings pot", core.AccountSavings, 0)

	// The income flag loses to the shadow-payee link.
	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:      mustDate(t, "2025-03-05"),
		AccountID: src.ID,
		PayeeID:   e.shadowPayee(t, pot.ID).ID,
		Amount:    core.Money{Cents: 4000},
		IsIncome:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-4000), tx.Amount.Cents)
	assert.Equal(t, int64(6000), e.balance(t, src.ID))
	assert.Equal(t, int64(4000), e.balance(t, pot.ID))
}

func TestCreateDeleteRoundTripIsExact(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	src := e.account(t, "Checking", core.AccountDebit, 12345)
	card := e.account(t, "Card", core.AccountCredit, -678)

	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:      mustDate(t, "2025-03-05"),
		AccountID: src.ID,
		PayeeID:   e.shadowPayee(t, card.ID).ID,
		Amount:    core.Money{Cents: 999},
	})
	require.NoError(t, err)
	require.NoError(t, e.ledger.DeleteTransaction(ctx, tx.ID))

	assert.Equal(t, int64(12345), e.balance(t, src.ID))
	assert.Equal(t, int64(-678), e.balance(t, card.ID))

	_, err = e.ledger.GetTransaction(ctx, tx.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestUpdateMovesEffectsBetweenAccounts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	first := e.account(t, "Checking", core.AccountDebit, 10000)
	second := e.account(t, "Backup", core.AccountDebit, 5000)
	shop := e.payee(t, "Shop")
	groceries := e.category(t, "Groceries")

	tx, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-10"),
		AccountID:  first.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 3000},
	})
	require.NoError(t, err)

	// Move the expense to the other account and change its amount.
	_, err = e.ledger.UpdateTransaction(ctx, tx.ID, TransactionInput{
		Date:       mustDate(t, "2025-04-01"),
		AccountID:  second.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 4500},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), e.balance(t, first.ID), "old effect fully reversed")
	assert.Equal(t, int64(500), e.balance(t, second.ID))

	// And back again: the round trip is exact.
	_, err = e.ledger.UpdateTransaction(ctx, tx.ID, TransactionInput{
		Date:       mustDate(t, "2025-03-10"),
		AccountID:  first.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 3000},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), e.balance(t, first.ID))
	assert.Equal(t, int64(5000), e.balance(t, second.ID))
}

func TestCreateTransactionValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 10000)
	shop := e.payee(t, "Shop")
	groceries := e.category(t, "Groceries")
	date := mustDate(t, "2025-03-10")

	tests := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{
			name: "expense without category",
			in:   TransactionInput{Date: date, AccountID: acc.ID, PayeeID: shop.ID, Amount: core.Money{Cents: 100}},
			want: core.ErrInvalidArgument,
		},
		{
			name: "income with category",
			in:   TransactionInput{Date: date, AccountID: acc.ID, PayeeID: shop.ID, CategoryID: groceries.ID, Amount: core.Money{Cents: 100}, IsIncome: true},
			want: core.ErrInvalidArgument,
		},
		{
			name: "zero amount",
			in:   TransactionInput{Date: date, AccountID: acc.ID, PayeeID: shop.ID, CategoryID: groceries.ID},
			want: core.ErrInvalidArgument,
		},
		{
			name: "negative amount",
			in:   TransactionInput{Date: date, AccountID: acc.ID, PayeeID: shop.ID, CategoryID: groceries.ID, Amount: core.Money{Cents: -100}},
			want: core.ErrInvalidArgument,
		},
		{
			name: "unknown payee",
			in:   TransactionInput{Date: date, AccountID: acc.ID, PayeeID: "missing", CategoryID: groceries.ID, Amount: core.Money{Cents: 100}},
			want: core.ErrNotFound,
		},
		{
			name: "unknown account",
			in:   TransactionInput{Date: date, AccountID: "missing", PayeeID: shop.ID, CategoryID: groceries.ID, Amount: core.Money{Cents: 100}},
			want: core.ErrNotFound,
		},
		{
			name: "missing date",
			in:   TransactionInput{AccountID: acc.ID, PayeeID: shop.ID, CategoryID: groceries.ID, Amount: core.Money{Cents: 100}},
			want: core.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.CreateTransaction(ctx, tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	// No balance drift from any rejected mutation.
	assert.Equal(t, int64(10000), e.balance(t, acc.ID))
}

func TestTransferIntoFundingAccountRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 10000)

	_, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:      mustDate(t, "2025-03-10"),
		AccountID: acc.ID,
		PayeeID:   e.shadowPayee(t, acc.ID).ID,
		Amount:    core.Money{Cents: 100},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument), "got %v", err)
}

func TestTransferWithCategoryRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	src := e.account(t, "Checking", core.AccountDebit, 10000)
	pot := e.account(t, "Savings", core.AccountSavings, 0)
	groceries := e.category(t, "Groceries")

	_, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-10"),
		AccountID:  src.ID,
		PayeeID:    e.shadowPayee(t, pot.ID).ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 100},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument), "got %v", err)
	assert.Equal(t, int64(10000), e.balance(t, src.ID))
	assert.Equal(t, int64(0), e.balance(t, pot.ID))
}
