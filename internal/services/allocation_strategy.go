// Package services provides business logic over the ledger store.
package services

import (
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

// AllocationPlan is one month's planned amount produced by an allocator.
type AllocationPlan struct {
	Month  core.Month
	Amount core.Money
}

// AssignInput is a budget assignment request for one category starting at
// one month. Amount drives the custom and monthly policies; Target and
// TargetMonth drive the target policy.
type AssignInput struct {
	Policy      core.BudgetPolicy
	Amount      core.Money
	Target      core.Money
	TargetMonth core.Month
}

// Allocator expands one assignment request into per-month amounts. Each
// budget policy (custom, monthly, target) has its own allocator.
type Allocator interface {
	// Plan expands the request into the per-month amounts to upsert.
	Plan(month core.Month, in AssignInput) ([]AllocationPlan, error)
}

// CustomAllocator assigns one month only.
type CustomAllocator struct{}

func (CustomAllocator) Plan(month core.Month, in AssignInput) ([]AllocationPlan, error) {
	if in.Amount.Cents < 0 {
		return nil, fmt.Errorf("negative assignment: %w", core.ErrInvalidArgument)
	}
	return []AllocationPlan{{Month: month, Amount: in.Amount}}, nil
}

// MonthlyAllocator repeats the same amount over a rolling 12-month window.
type MonthlyAllocator struct{}

func (MonthlyAllocator) Plan(month core.Month, in AssignInput) ([]AllocationPlan, error) {
	if in.Amount.Cents <= 0 {
		return nil, fmt.Errorf("monthly assignment must be positive: %w", core.ErrInvalidArgument)
	}
	plans := make([]AllocationPlan, 0, 12)
	for i := 0; i < 12; i++ {
		plans = append(plans, AllocationPlan{Month: month.Add(i), Amount: in.Amount})
	}
	return plans, nil
}

// TargetAllocator amortizes a target amount evenly through the target month.
// Each month gets the ceiling of what remains divided by the months left, so
// the earlier months absorb the rounding: 100 over 3 months is 34, 33, 33,
// and the plan always sums to the target exactly.
type TargetAllocator struct{}

func (TargetAllocator) Plan(month core.Month, in AssignInput) ([]AllocationPlan, error) {
	if in.Target.Cents <= 0 {
		return nil, fmt.Errorf("target must be positive: %w", core.ErrInvalidArgument)
	}
	if in.TargetMonth.IsZero() || in.TargetMonth.Before(month) {
		return nil, fmt.Errorf("target month precedes assignment month: %w", core.ErrInvalidArgument)
	}

	remaining := in.Target.Cents
	var plans []AllocationPlan
	for m := month; !in.TargetMonth.Before(m); m = m.Add(1) {
		left := int64(m.UntilInclusive(in.TargetMonth))
		per := (remaining + left - 1) / left
		plans = append(plans, AllocationPlan{Month: m, Amount: core.Money{Cents: per}})
		remaining -= per
	}
	return plans, nil
}

// allocators maps budget policies to their strategies.
var allocators = map[core.BudgetPolicy]Allocator{
	core.PolicyCustom:  CustomAllocator{},
	core.PolicyMonthly: MonthlyAllocator{},
	core.PolicyTarget:  TargetAllocator{},
}

// GetAllocator returns the allocator for a policy.
func GetAllocator(policy core.BudgetPolicy) (Allocator, error) {
	allocator, ok := allocators[policy]
	if !ok {
		return nil, fmt.Errorf("unknown budget policy %q: %w", policy, core.ErrInvalidArgument)
	}
	return allocator, nil
}
