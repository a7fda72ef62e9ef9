package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/XaviGIT/budget-app/internal/amqp"
	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/storage"
)

// MonthInvalidator drops cached budget read models for a month after a
// mutation touches it. BudgetService implements it.
type MonthInvalidator interface {
	InvalidateMonth(month core.Month)
}

// TransactionInput is the caller's intent for a create or update. Amount is
// a positive magnitude; the engine derives the signed stored amount from the
// transaction kind.
type TransactionInput struct {
	Date       core.Date
	AccountID  string
	PayeeID    string
	CategoryID string
	Amount     core.Money
	Memo       string
	IsIncome   bool
}

// LedgerService is the only write path for transactions and, through them,
// account balances. Every mutation computes its signed effects, applies them
// with the row write in one storage transaction, and reverses the previously
// applied effects first on update and delete.
type LedgerService struct {
	store      *storage.Store
	amqpClient *amqp.Client
	budgets    MonthInvalidator
}

func NewLedgerService(store *storage.Store, amqpClient *amqp.Client, budgets MonthInvalidator) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
		budgets:    budgets,
	}
}

func (in TransactionInput) validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("missing date: %w", core.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.AccountID) == "" {
		return fmt.Errorf("missing account: %w", core.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.PayeeID) == "" {
		return fmt.Errorf("missing payee: %w", core.ErrInvalidArgument)
	}
	if in.Amount.Cents <= 0 {
		return fmt.Errorf("amount must be positive: %w", core.ErrInvalidArgument)
	}
	return nil
}

// CreateTransaction records a new ledger movement and applies its balance
// effects atomically.
func (s *LedgerService) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	if err := in.validate(); err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		tx, effects, err := s.resolveIntent(ctx, q, in)
		if err != nil {
			return err
		}
		tx.ID = uuid.NewString()
		if err := q.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		if err := applyEffects(ctx, q, effects); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.invalidate(created.Date.Month())
	s.publish(ctx, amqp.EventTransactionCreated, created)
	return created, nil
}

// UpdateTransaction replaces a transaction with new intent. The previously
// applied effects are reversed and the new ones applied in the same storage
// transaction, so no intermediate state is ever visible.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	if err := in.validate(); err != nil {
		return core.Transaction{}, err
	}

	var (
		updated  core.Transaction
		oldMonth core.Month
	)
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		oldMonth = old.Date.Month()

		reversal, err := storedReversal(ctx, q, old)
		if err != nil {
			return err
		}
		tx, effects, err := s.resolveIntent(ctx, q, in)
		if err != nil {
			return err
		}
		tx.ID = old.ID

		if err := applyEffects(ctx, q, reversal); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, tx); err != nil {
			return err
		}
		if err := applyEffects(ctx, q, effects); err != nil {
			return err
		}
		updated = tx
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.invalidate(oldMonth)
	s.invalidate(updated.Date.Month())
	s.publish(ctx, amqp.EventTransactionUpdated, updated)
	return updated, nil
}

// DeleteTransaction removes a transaction after reversing its effects.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	var deleted core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		reversal, err := storedReversal(ctx, q, old)
		if err != nil {
			return err
		}
		if err := applyEffects(ctx, q, reversal); err != nil {
			return err
		}
		if err := q.DeleteTransaction(ctx, old.ID); err != nil {
			return err
		}
		deleted = old
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.invalidate(deleted.Date.Month())
	s.publish(ctx, amqp.EventTransactionDeleted, deleted)
	return nil
}

// GetTransaction loads one transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Queries().GetTransaction(ctx, id)
}

// ListTransactions lists transactions newest-first, optionally scoped to the
// accounts a given account funds or receives.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID string) ([]storage.TransactionDetail, error) {
	return s.store.Queries().ListTransactions(ctx, accountID)
}

// ListPayees lists every counterparty, shadow payees included.
func (s *LedgerService) ListPayees(ctx context.Context) ([]core.Payee, error) {
	return s.store.Queries().ListPayees(ctx)
}

// resolveIntent turns caller intent into the persistable row and its signed
// effects. The payee link decides the kind: a payee owned by an account makes
// the movement a transfer no matter what the income flag says.
func (s *LedgerService) resolveIntent(ctx context.Context, q *storage.Queries, in TransactionInput) (core.Transaction, []core.Effect, error) {
	if _, err := q.GetAccount(ctx, in.AccountID); err != nil {
		return core.Transaction{}, nil, err
	}
	payee, err := q.GetPayee(ctx, in.PayeeID)
	if err != nil {
		return core.Transaction{}, nil, err
	}

	kind := core.Classify(payee.AccountID, in.IsIncome)

	var targetType core.AccountType
	switch kind {
	case core.KindTransfer:
		if payee.AccountID == in.AccountID {
			return core.Transaction{}, nil, fmt.Errorf("transfer into the funding account: %w", core.ErrInvalidArgument)
		}
		target, err := q.GetAccount(ctx, payee.AccountID)
		if err != nil {
			return core.Transaction{}, nil, err
		}
		targetType = target.Type
		if in.CategoryID != "" {
			return core.Transaction{}, nil, fmt.Errorf("transfer cannot carry a category: %w", core.ErrInvalidArgument)
		}
	case core.KindIncome:
		if in.CategoryID != "" {
			return core.Transaction{}, nil, fmt.Errorf("income cannot carry a category: %w", core.ErrInvalidArgument)
		}
	case core.KindExpense:
		if in.CategoryID == "" {
			return core.Transaction{}, nil, fmt.Errorf("expense requires a category: %w", core.ErrInvalidArgument)
		}
		if _, err := q.GetCategory(ctx, in.CategoryID); err != nil {
			return core.Transaction{}, nil, err
		}
	}

	effects, err := core.TransactionEffects(in.AccountID, in.Amount, kind, payee.AccountID, targetType)
	if err != nil {
		return core.Transaction{}, nil, err
	}

	tx := core.Transaction{
		Date:        in.Date,
		AccountID:   in.AccountID,
		PayeeID:     in.PayeeID,
		CategoryID:  in.CategoryID,
		Amount:      core.SourceDelta(in.Amount, kind),
		Memo:        in.Memo,
		ToAccountID: payee.AccountID,
	}
	return tx, effects, nil
}

// storedReversal computes the inverse of the effects a persisted transaction
// applied when written. The target leg is re-derived from the target
// account's current type.
func storedReversal(ctx context.Context, q *storage.Queries, t core.Transaction) ([]core.Effect, error) {
	var targetType core.AccountType
	if t.ToAccountID != "" {
		target, err := q.GetAccount(ctx, t.ToAccountID)
		if err != nil {
			return nil, err
		}
		targetType = target.Type
	}
	return core.Inverse(core.StoredEffects(t, targetType)), nil
}

func applyEffects(ctx context.Context, q *storage.Queries, effects []core.Effect) error {
	for _, e := range effects {
		if err := q.AdjustAccountBalance(ctx, e.AccountID, e.Delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerService) invalidate(month core.Month) {
	if s.budgets != nil {
		s.budgets.InvalidateMonth(month)
	}
}

func (s *LedgerService) publish(ctx context.Context, kind string, t core.Transaction) {
	if s.amqpClient == nil {
		return
	}
	accountIDs := []string{t.AccountID}
	if t.ToAccountID != "" {
		accountIDs = append(accountIDs, t.ToAccountID)
	}
	event := amqp.NewLedgerEvent(kind, t.ID, accountIDs...)
	if err := s.amqpClient.PublishLedgerEvent(ctx, event); err != nil {
		// The mutation is committed; a lost event only delays the audit.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err,
			"kind", kind,
			"transaction_id", t.ID)
	}
}
