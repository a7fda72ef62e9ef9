package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// AccountDebit is an everyday checking account.
	AccountDebit AccountType = "DEBIT"
	// AccountSavings is a savings account; it behaves like DEBIT for
	// balance arithmetic.
	AccountSavings AccountType = "SAVINGS"
	// AccountCredit is a credit card. Its balance tracks the outstanding
	// liability as a negative number.
	AccountCredit AccountType = "CREDIT"
)

const (
	// PolicyCustom assigns one month only.
	PolicyCustom BudgetPolicy = "custom"
	// PolicyMonthly propagates the same amount over a rolling 12-month
	// window.
	PolicyMonthly BudgetPolicy = "monthly"
	// PolicyTarget amortizes a target amount evenly through a target
	// month.
	PolicyTarget BudgetPolicy = "target"
)

type (
	AccountType  string
	BudgetPolicy string

	// Date is a calendar day. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Account is a real-world account holding money (or owing it, for
	// CREDIT). Its balance is only ever written by the balance mutation
	// engine and by explicit balance edits through the account service.
	Account struct {
		ID      string
		Name    string
		Type    AccountType
		Balance Money
		// OpeningBalance is the baseline the audit worker checks the
		// invariant balance == opening + Σ effects against. It moves
		// only on direct balance edits.
		OpeningBalance Money
	}

	// Payee is a transaction counterparty. When AccountID is set the
	// payee is the shadow of that account and paying it is a transfer.
	Payee struct {
		ID        string
		Name      string
		Icon      string
		AccountID string // empty for external payees
	}

	// CategoryGroup is an ordered grouping of categories on the budget
	// screen.
	CategoryGroup struct {
		ID        string
		Name      string
		SortOrder int
	}

	// Category is a spending category. The Budget* fields persist the
	// last allocation policy applied to it so future months can be
	// regenerated or audited.
	Category struct {
		ID           string
		Name         string
		Icon         string
		GroupID      string
		SortOrder    int
		BudgetPolicy BudgetPolicy // empty when never budgeted
		BudgetAmount Money
		BudgetTarget Money
		TargetMonth  Month
	}

	// Transaction is a single ledger movement. Amount is the signed
	// effect on the source account: negative for expense and transfer
	// outflow, positive for income. CategoryID is empty for transfers
	// and income.
	Transaction struct {
		ID          string
		Date        Date
		AccountID   string
		PayeeID     string
		CategoryID  string // empty = uncategorized (transfer/income)
		Amount      Money
		Memo        string
		ToAccountID string // set when the payee is an account's shadow
	}

	// BudgetAssignment is the planned amount for one (month, category)
	// pair.
	BudgetAssignment struct {
		ID         string
		Month      Month
		CategoryID string
		Amount     Money
	}
)

// ParseDate parses a "YYYY-MM-DD" day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("date %q: %w", s, ErrInvalidArgument)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Month returns the calendar month containing the date.
func (d Date) Month() Month {
	return MonthOf(d.Time)
}

// String renders the "YYYY-MM-DD" form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Valid reports whether t names one of the three account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountDebit, AccountSavings, AccountCredit:
		return true
	}
	return false
}

// Valid reports whether p names one of the three allocation policies.
func (p BudgetPolicy) Valid() bool {
	switch p {
	case PolicyCustom, PolicyMonthly, PolicyTarget:
		return true
	}
	return false
}

// Validate checks the fields an account must carry before it is persisted.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("empty account name: %w", ErrInvalidArgument)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("account type %q: %w", a.Type, ErrInvalidArgument)
	}
	return nil
}

// ShadowIcon derives a payee icon from an account name, the way account
// creation always has: the first word of the name.
func ShadowIcon(accountName string) string {
	fields := strings.Fields(accountName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
