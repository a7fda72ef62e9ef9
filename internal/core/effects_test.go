package core

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		targetID string
		isIncome bool
		want     TransactionKind
	}{
		{"external payee, no flag", "", false, KindExpense},
		{"external payee, income flag", "", true, KindIncome},
		{"account payee", "acc-2", false, KindTransfer},
		{"account payee wins over income flag", "acc-2", true, KindTransfer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.targetID, tc.isIncome); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTransferTargetDelta(t *testing.T) {
	thirty := Money{Cents: 3000}
	if got := TransferTargetDelta(thirty, AccountDebit); got.Cents != 3000 {
		t.Errorf("DEBIT target delta = %d, want 3000", got.Cents)
	}
	if got := TransferTargetDelta(thirty, AccountSavings); got.Cents != 3000 {
		t.Errorf("SAVINGS target delta = %d, want 3000", got.Cents)
	}
	if got := TransferTargetDelta(thirty, AccountCredit); got.Cents != -3000 {
		t.Errorf("CREDIT target delta = %d, want -3000", got.Cents)
	}
	// Magnitude sign must not matter.
	if got := TransferTargetDelta(thirty.Neg(), AccountDebit); got.Cents != 3000 {
		t.Errorf("negative magnitude DEBIT delta = %d, want 3000", got.Cents)
	}
}

func TestTransactionEffects(t *testing.T) {
	amt := Money{Cents: 3000}

	t.Run("expense", func(t *testing.T) {
		effects, err := TransactionEffects("src", amt, KindExpense, "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(effects) != 1 || effects[0].Delta.Cents != -3000 {
			t.Fatalf("effects = %+v", effects)
		}
	})

	t.Run("income", func(t *testing.T) {
		effects, err := TransactionEffects("src", amt, KindIncome, "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(effects) != 1 || effects[0].Delta.Cents != 3000 {
			t.Fatalf("effects = %+v", effects)
		}
	})

	t.Run("transfer to debit", func(t *testing.T) {
		effects, err := TransactionEffects("src", amt, KindTransfer, "dst", AccountDebit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(effects) != 2 {
			t.Fatalf("effects = %+v", effects)
		}
		if effects[0].Delta.Cents != -3000 || effects[1].Delta.Cents != 3000 {
			t.Fatalf("effects = %+v", effects)
		}
	})

	t.Run("transfer to credit", func(t *testing.T) {
		effects, err := TransactionEffects("src", amt, KindTransfer, "card", AccountCredit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if effects[1].Delta.Cents != -3000 {
			t.Fatalf("credit target delta = %d, want -3000", effects[1].Delta.Cents)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		if _, err := TransactionEffects("src", Money{}, KindExpense, "", ""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("transfer without target", func(t *testing.T) {
		if _, err := TransactionEffects("src", amt, KindTransfer, "", ""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestStoredEffectsRoundTrip(t *testing.T) {
	// Reversal of whatever was stored must cancel exactly.
	txn := Transaction{
		ID:          "t1",
		AccountID:   "src",
		ToAccountID: "card",
		Amount:      Money{Cents: -3000},
	}
	applied := StoredEffects(txn, AccountCredit)
	reversed := Inverse(applied)

	sums := map[string]int64{}
	for _, e := range applied {
		sums[e.AccountID] += e.Delta.Cents
	}
	for _, e := range reversed {
		sums[e.AccountID] += e.Delta.Cents
	}
	for id, sum := range sums {
		if sum != 0 {
			t.Errorf("account %s: net delta %d after apply+reverse, want 0", id, sum)
		}
	}
}

func TestStoredEffectsIncome(t *testing.T) {
	txn := Transaction{ID: "t2", AccountID: "src", Amount: Money{Cents: 20000}}
	effects := StoredEffects(txn, "")
	if len(effects) != 1 || effects[0].Delta.Cents != 20000 {
		t.Fatalf("effects = %+v", effects)
	}
}
