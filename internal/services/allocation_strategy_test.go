package services

import (
	"testing"

	"github.com/XaviGIT/budget-app/internal/core"
)

func TestTargetAllocatorPlans(t *testing.T) {
	start := core.NewMonth(2025, 3)

	tests := []struct {
		name        string
		target      int64
		targetMonth core.Month
		want        []int64
	}{
		{"divides evenly", 300, core.NewMonth(2025, 5), []int64{100, 100, 100}},
		{"front-loads remainder", 100, core.NewMonth(2025, 5), []int64{34, 33, 33}},
		{"single month", 100, start, []int64{100}},
		{"crosses year end", 1200, core.NewMonth(2026, 2), []int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}},
		{"tiny target long horizon", 2, core.NewMonth(2025, 6), []int64{1, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := (TargetAllocator{}).Plan(start, AssignInput{
				Policy:      core.PolicyTarget,
				Target:      core.Money{Cents: tt.target},
				TargetMonth: tt.targetMonth,
			})
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(plans) != len(tt.want) {
				t.Fatalf("got %d months, want %d", len(plans), len(tt.want))
			}
			var sum int64
			for i, p := range plans {
				if p.Amount.Cents != tt.want[i] {
					t.Errorf("month %s = %d, want %d", p.Month, p.Amount.Cents, tt.want[i])
				}
				if got := start.Add(i); p.Month != got {
					t.Errorf("month %d key = %s, want %s", i, p.Month, got)
				}
				sum += p.Amount.Cents
			}
			if sum != tt.target {
				t.Errorf("plan sums to %d, want %d", sum, tt.target)
			}
		})
	}
}

func TestGetAllocatorUnknownPolicy(t *testing.T) {
	if _, err := GetAllocator("weekly"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
	for _, p := range []core.BudgetPolicy{core.PolicyCustom, core.PolicyMonthly, core.PolicyTarget} {
		if _, err := GetAllocator(p); err != nil {
			t.Errorf("GetAllocator(%s): %v", p, err)
		}
	}
}
