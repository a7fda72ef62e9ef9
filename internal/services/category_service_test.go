package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XaviGIT/budget-app/internal/core"
)

func TestDeleteCategoryGuardedByTransactions(t *testing.T) {
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
		Amount:     core.Money{Cents: 100},
	})
	require.NoError(t, err)

	err = e.categories.DeleteCategory(ctx, groceries.ID)
	assert.True(t, errors.Is(err, core.ErrPreconditionFailed), "got %v", err)

	require.NoError(t, e.ledger.DeleteTransaction(ctx, tx.ID))
	require.NoError(t, e.categories.DeleteCategory(ctx, groceries.ID))
}

func TestDeleteCategoryRemovesAssignments(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	groceries := e.category(t, "Groceries")
	march := mustMonth(t, "2025-03")

	require.NoError(t, e.budget.Assign(ctx, march, groceries.ID,
		AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: 100}}))
	require.NoError(t, e.categories.DeleteCategory(ctx, groceries.ID))

	total, err := e.store.Queries().SumAssignmentsTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Cents)
}

func TestDeleteGroupCascadesWhenClean(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	g, err := e.categories.CreateCategoryGroup(ctx, "Essentials")
	require.NoError(t, err)
	c, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Rent", GroupID: g.ID})
	require.NoError(t, err)

	require.NoError(t, e.categories.DeleteCategoryGroup(ctx, g.ID, ""))

	_, err = e.store.Queries().GetCategory(ctx, c.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	_, err = e.store.Queries().GetCategoryGroup(ctx, g.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestDeleteGroupBlockedByMemberTransactions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 10000)
	shop := e.payee(t, "Shop")
	groceries := e.category(t, "Groceries")

	_, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-10"),
		AccountID:  acc.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 100},
	})
	require.NoError(t, err)

	err = e.categories.DeleteCategoryGroup(ctx, groceries.GroupID, "")
	assert.True(t, errors.Is(err, core.ErrPreconditionFailed), "got %v", err)

	// Category survives the failed cascade.
	_, err = e.store.Queries().GetCategory(ctx, groceries.ID)
	assert.NoError(t, err)
}

func TestDeleteGroupReassignsMembers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doomed, err := e.categories.CreateCategoryGroup(ctx, "Old group")
	require.NoError(t, err)
	keep, err := e.categories.CreateCategoryGroup(ctx, "New group")
	require.NoError(t, err)
	c, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Rent", GroupID: doomed.ID})
	require.NoError(t, err)

	require.NoError(t, e.categories.DeleteCategoryGroup(ctx, doomed.ID, keep.ID))

	got, err := e.store.Queries().GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, keep.ID, got.GroupID)
}

func TestReorderPersistsSortOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	g, err := e.categories.CreateCategoryGroup(ctx, "Essentials")
	require.NoError(t, err)
	first, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Rent", GroupID: g.ID})
	require.NoError(t, err)
	second, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Food", GroupID: g.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)

	require.NoError(t, e.categories.Reorder(ctx, nil, map[string]int{
		first.ID:  1,
		second.ID: 0,
	}))

	list, err := e.categories.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdateCategoryMovesGroup(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	g1, err := e.categories.CreateCategoryGroup(ctx, "Essentials")
	require.NoError(t, err)
	g2, err := e.categories.CreateCategoryGroup(ctx, "Fun")
	require.NoError(t, err)
	c, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Rent", GroupID: g1.ID})
	require.NoError(t, err)

	updated, err := e.categories.UpdateCategory(ctx, c.ID, CategoryInput{
		Name: "Housing", Icon: "🏠", GroupID: g2.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Housing", updated.Name)
	assert.Equal(t, g2.ID, updated.GroupID)

	_, err = e.categories.UpdateCategory(ctx, c.ID, CategoryInput{Name: "X", GroupID: "missing"})
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}
