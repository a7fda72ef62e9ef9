package core

import "fmt"

// TransactionKind classifies how a transaction moves money.
type TransactionKind int

const (
	// KindExpense is an outflow to an external payee.
	KindExpense TransactionKind = iota
	// KindIncome is an inflow from an external payee.
	KindIncome
	// KindTransfer moves value between two accounts; the payee resolves
	// to the target account's shadow.
	KindTransfer
)

func (k TransactionKind) String() string {
	switch k {
	case KindExpense:
		return "expense"
	case KindIncome:
		return "income"
	case KindTransfer:
		return "transfer"
	}
	return "unknown"
}

// Effect is one signed balance delta on one account. A transaction causes
// one effect (expense, income) or two (transfer).
type Effect struct {
	AccountID string
	Delta     Money
}

// Classify determines the transaction kind from the resolved payee link and
// the explicit income flag. A payee that resolves to an account always wins:
// the movement is a transfer regardless of the flag.
func Classify(targetAccountID string, isIncome bool) TransactionKind {
	switch {
	case targetAccountID != "":
		return KindTransfer
	case isIncome:
		return KindIncome
	default:
		return KindExpense
	}
}

// TransferTargetDelta is the signed effect a transfer of the given magnitude
// has on its target account.
//
// Polarity convention: the funding account always moves by -|amount|. A
// DEBIT or SAVINGS target receives +|amount|. A CREDIT target moves by
// -|amount| as well: the card's stored balance is the negated running total
// of charges, and payments into it are recorded with the same polarity as
// the funding side, so both legs of a card payment move in the same
// direction. Transfer round-trips stay exact because reversal negates
// whatever this function produced.
func TransferTargetDelta(magnitude Money, targetType AccountType) Money {
	m := magnitude.Abs()
	if targetType == AccountCredit {
		return m.Neg()
	}
	return m
}

// SourceDelta is the signed effect on the source account: -|amount| for
// expense and transfer, +|amount| for income. This is also the amount
// persisted on the transaction row.
func SourceDelta(magnitude Money, kind TransactionKind) Money {
	if kind == KindIncome {
		return magnitude.Abs()
	}
	return magnitude.Abs().Neg()
}

// TransactionEffects computes the full signed effect list of a transaction
// intent: the source-account delta and, for transfers, the target-account
// delta under the polarity convention above.
func TransactionEffects(sourceAccountID string, magnitude Money, kind TransactionKind, targetAccountID string, targetType AccountType) ([]Effect, error) {
	if magnitude.IsZero() {
		return nil, fmt.Errorf("zero amount: %w", ErrInvalidArgument)
	}
	effects := []Effect{{
		AccountID: sourceAccountID,
		Delta:     SourceDelta(magnitude, kind),
	}}
	if kind == KindTransfer {
		if targetAccountID == "" {
			return nil, fmt.Errorf("transfer without target account: %w", ErrInvalidArgument)
		}
		effects = append(effects, Effect{
			AccountID: targetAccountID,
			Delta:     TransferTargetDelta(magnitude, targetType),
		})
	}
	return effects, nil
}

// StoredEffects reconstructs the effect list a persisted transaction applied
// when it was written: the stored amount is already the signed source delta,
// and the target side is re-derived from the target account's type. Negating
// this list is the exact reversal used by update and delete.
func StoredEffects(t Transaction, targetType AccountType) []Effect {
	effects := []Effect{{AccountID: t.AccountID, Delta: t.Amount}}
	if t.ToAccountID != "" {
		effects = append(effects, Effect{
			AccountID: t.ToAccountID,
			Delta:     TransferTargetDelta(t.Amount, targetType),
		})
	}
	return effects
}

// Inverse negates every delta in the list.
func Inverse(effects []Effect) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
	}
	return out
}
