package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/XaviGIT/budget-app/internal/cache"
	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/storage"
)

// BudgetCategory is one category row of the month read model.
type BudgetCategory struct {
	Category core.Category
	Assigned core.Money
	Spent    core.Money
}

// BudgetGroup is one display group of the month read model.
type BudgetGroup struct {
	Group      core.CategoryGroup
	Categories []BudgetCategory
}

// BudgetMonth is the full budget read model for one month.
type BudgetMonth struct {
	Month         core.Month
	Groups        []BudgetGroup
	TotalAssigned core.Money
	TotalSpent    core.Money
}

// BudgetService runs the assignment policies and serves the month read
// model through an LRU cache that every mutation path invalidates.
type BudgetService struct {
	store  *storage.Store
	months *cache.LRU[BudgetMonth]
}

func NewBudgetService(store *storage.Store) *BudgetService {
	return &BudgetService{
		store:  store,
		months: cache.NewLRU[BudgetMonth](24, 5*time.Minute),
	}
}

// Assign applies one allocation policy to a category starting at month. The
// policy is persisted on the category row so the plan can be regenerated,
// and each planned month is upserted in one unit of work.
func (s *BudgetService) Assign(ctx context.Context, month core.Month, categoryID string, in AssignInput) error {
	if month.IsZero() {
		return fmt.Errorf("missing month: %w", core.ErrInvalidArgument)
	}
	// A bare assign without a policy is a plain single-month upsert.
	if in.Policy == "" {
		in.Policy = core.PolicyCustom
	}
	allocator, err := GetAllocator(in.Policy)
	if err != nil {
		return err
	}
	plans, err := allocator.Plan(month, in)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		category, err := q.GetCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		category.BudgetPolicy = in.Policy
		category.BudgetAmount = in.Amount
		category.BudgetTarget = in.Target
		category.TargetMonth = in.TargetMonth
		if err := q.SetCategoryBudgetConfig(ctx, category); err != nil {
			return err
		}
		for _, plan := range plans {
			assignment := core.BudgetAssignment{
				ID:         uuid.NewString(),
				Month:      plan.Month,
				CategoryID: categoryID,
				Amount:     plan.Amount,
			}
			if err := q.UpsertAssignment(ctx, assignment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("assign budget: %w", err)
	}

	for _, plan := range plans {
		s.InvalidateMonth(plan.Month)
	}
	return nil
}

// GetBudget builds (or serves from cache) the month read model: groups in
// display order, each category with its assigned and spent amounts.
func (s *BudgetService) GetBudget(ctx context.Context, month core.Month) (BudgetMonth, error) {
	if month.IsZero() {
		return BudgetMonth{}, fmt.Errorf("missing month: %w", core.ErrInvalidArgument)
	}
	if cached, ok := s.months.Get(month.String()); ok {
		return cached, nil
	}

	q := s.store.Queries()
	groups, err := q.ListCategoryGroups(ctx)
	if err != nil {
		return BudgetMonth{}, fmt.Errorf("get budget: %w", err)
	}
	categories, err := q.ListCategories(ctx)
	if err != nil {
		return BudgetMonth{}, fmt.Errorf("get budget: %w", err)
	}
	assignments, err := q.ListAssignmentsByMonth(ctx, month)
	if err != nil {
		return BudgetMonth{}, fmt.Errorf("get budget: %w", err)
	}

	assigned := make(map[string]core.Money, len(assignments))
	for _, a := range assignments {
		assigned[a.CategoryID] = a.Amount
	}

	byGroup := make(map[string][]BudgetCategory, len(groups))
	model := BudgetMonth{Month: month}
	for _, c := range categories {
		spent, err := q.SumSpentByCategory(ctx, c.ID, month)
		if err != nil {
			return BudgetMonth{}, fmt.Errorf("get budget: %w", err)
		}
		row := BudgetCategory{
			Category: c,
			Assigned: assigned[c.ID],
			Spent:    spent,
		}
		byGroup[c.GroupID] = append(byGroup[c.GroupID], row)
		model.TotalAssigned.Cents += row.Assigned.Cents
		model.TotalSpent.Cents += spent.Cents
	}
	for _, g := range groups {
		model.Groups = append(model.Groups, BudgetGroup{
			Group:      g,
			Categories: byGroup[g.ID],
		})
	}

	s.months.Set(month.String(), model)
	return model, nil
}

// AvailableFunds is the to-be-budgeted figure: everything the DEBIT and
// SAVINGS accounts hold minus everything ever assigned.
func (s *BudgetService) AvailableFunds(ctx context.Context) (core.Money, error) {
	q := s.store.Queries()
	balances, err := q.SumOnBudgetBalances(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("available funds: %w", err)
	}
	total, err := q.SumAssignmentsTotal(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("available funds: %w", err)
	}
	return core.Money{Cents: balances.Cents - total.Cents}, nil
}

// InvalidateMonth drops the cached read model for one month. The zero month
// drops every cached month, used when the category structure itself changed.
func (s *BudgetService) InvalidateMonth(month core.Month) {
	if month.IsZero() {
		s.months.Clear()
		return
	}
	s.months.Delete(month.String())
}
