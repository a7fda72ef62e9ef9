package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XaviGIT/budget-app/internal/core"
)

func mustMonth(t *testing.T, s string) core.Month {
	t.Helper()
	m, err := core.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func (e *testEnv) assigned(t *testing.T, month core.Month, categoryID string) int64 {
	t.Helper()
	a, err := e.store.Queries().GetAssignment(context.Background(), month, categoryID)
	if errors.Is(err, core.ErrNotFound) {
		return 0
	}
	require.NoError(t, err)
	return a.Amount.Cents
}

func TestAssignCustomIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.category(t, "Rent")
	march := mustMonth(t, "2025-03")

	in := AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: 50000}}
	require.NoError(t, e.budget.Assign(ctx, march, c.ID, in))
	require.NoError(t, e.budget.Assign(ctx, march, c.ID, in))

	assert.Equal(t, int64(50000), e.assigned(t, march, c.ID))
	assert.Equal(t, int64(0), e.assigned(t, march.Add(1), c.ID), "custom touches one month only")

	total, err := e.store.Queries().SumAssignmentsTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), total.Cents, "re-assigning replaces, never accumulates")
}

func TestAssignWithoutPolicyDefaultsToCustom(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.category(t, "Groceries")
	march := mustMonth(t, "2025-03")

	// A bare assign with just an amount is a single-month upsert.
	require.NoError(t, e.budget.Assign(ctx, march, c.ID, AssignInput{Amount: core.Money{Cents: 5000}}))

	assert.Equal(t, int64(5000), e.assigned(t, march, c.ID))
	assert.Equal(t, int64(0), e.assigned(t, march.Add(1), c.ID))

	stored, err := e.store.Queries().GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PolicyCustom, stored.BudgetPolicy)
}

func TestAssignMonthlyCoversTwelveMonths(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.category(t, "Utilities")
	start := mustMonth(t, "2025-03")

	in := AssignInput{Policy: core.PolicyMonthly, Amount: core.Money{Cents: 7500}}
	require.NoError(t, e.budget.Assign(ctx, start, c.ID, in))

	for i := 0; i < 12; i++ {
		assert.Equal(t, int64(7500), e.assigned(t, start.Add(i), c.ID), "month %d", i)
	}
	assert.Equal(t, int64(0), e.assigned(t, start.Add(12), c.ID))
}

func TestAssignTargetAmortizesWithCeiling(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.category(t, "Holiday")
	start := mustMonth(t, "2025-03")

	in := AssignInput{
		Policy:      core.PolicyTarget,
		Target:      core.Money{Cents: 100},
		TargetMonth: mustMonth(t, "2025-05"),
	}
	require.NoError(t, e.budget.Assign(ctx, start, c.ID, in))

	assert.Equal(t, int64(34), e.assigned(t, mustMonth(t, "2025-03"), c.ID))
	assert.Equal(t, int64(33), e.assigned(t, mustMonth(t, "2025-04"), c.ID))
	assert.Equal(t, int64(33), e.assigned(t, mustMonth(t, "2025-05"), c.ID))

	total, err := e.store.Queries().SumAssignmentsTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total.Cents, "plan sums to the target exactly")

	// The policy is persisted on the category.
	got, err := e.store.Queries().GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PolicyTarget, got.BudgetPolicy)
	assert.Equal(t, int64(100), got.BudgetTarget.Cents)
	assert.Equal(t, "2025-05", got.TargetMonth.String())
}

func TestAssignTargetSingleMonth(t *testing.T) {
	e := newTestEnv(t)
	c := e.category(t, "Gift")
	march := mustMonth(t, "2025-03")

	in := AssignInput{Policy: core.PolicyTarget, Target: core.Money{Cents: 100}, TargetMonth: march}
	require.NoError(t, e.budget.Assign(context.Background(), march, c.ID, in))
	assert.Equal(t, int64(100), e.assigned(t, march, c.ID))
}

func TestAssignRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.category(t, "Rent")
	march := mustMonth(t, "2025-03")

	tests := []struct {
		name string
		in   AssignInput
	}{
		{"unknown policy", AssignInput{Policy: "weekly", Amount: core.Money{Cents: 100}}},
		{"target month in the past", AssignInput{Policy: core.PolicyTarget, Target: core.Money{Cents: 100}, TargetMonth: mustMonth(t, "2025-02")}},
		{"target without amount", AssignInput{Policy: core.PolicyTarget, TargetMonth: mustMonth(t, "2025-06")}},
		{"negative custom", AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: -5}}},
		{"zero monthly", AssignInput{Policy: core.PolicyMonthly}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.budget.Assign(ctx, march, c.ID, tt.in)
			assert.True(t, errors.Is(err, core.ErrInvalidArgument), "got %v", err)
		})
	}

	err := e.budget.Assign(ctx, march, "missing", AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: 100}})
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestGetBudgetReadModel(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	acc := e.account(t, "Checking", core.AccountDebit, 100000)
	shop := e.payee(t, "Shop")
	groceries := e.category(t, "Groceries")
	march := mustMonth(t, "2025-03")

	require.NoError(t, e.budget.Assign(ctx, march, groceries.ID,
		AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: 40000}}))

	_, err := e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-12"),
		AccountID:  acc.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 12500},
	})
	require.NoError(t, err)

	model, err := e.budget.GetBudget(ctx, march)
	require.NoError(t, err)
	require.Len(t, model.Groups, 1)
	require.Len(t, model.Groups[0].Categories, 1)

	row := model.Groups[0].Categories[0]
	assert.Equal(t, groceries.ID, row.Category.ID)
	assert.Equal(t, int64(40000), row.Assigned.Cents)
	assert.Equal(t, int64(12500), row.Spent.Cents)
	assert.Equal(t, int64(40000), model.TotalAssigned.Cents)
	assert.Equal(t, int64(12500), model.TotalSpent.Cents)

	// A later mutation invalidates the cached month.
	_, err = e.ledger.CreateTransaction(ctx, TransactionInput{
		Date:       mustDate(t, "2025-03-20"),
		AccountID:  acc.ID,
		PayeeID:    shop.ID,
		CategoryID: groceries.ID,
		Amount:     core.Money{Cents: 500},
	})
	require.NoError(t, err)

	model, err = e.budget.GetBudget(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, int64(13000), model.Groups[0].Categories[0].Spent.Cents)
}

func TestAvailableFunds(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.account(t, "Checking", core.AccountDebit, 100000)
	e.account(t, "Savings", core.AccountSavings, 50000)
	e.account(t, "Card", core.AccountCredit, -20000) // off budget
	groceries := e.category(t, "Groceries")

	require.NoError(t, e.budget.Assign(ctx, mustMonth(t, "2025-03"), groceries.ID,
		AssignInput{Policy: core.PolicyCustom, Amount: core.Money{Cents: 30000}}))

	funds, err := e.budget.AvailableFunds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), funds.Cents)
}
