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

// AccountService owns the account lifecycle and keeps the shadow payee in
// lockstep: every account has exactly one payee row carrying its name, so
// paying that payee from another account is a transfer. Accounts and payees
// share one name namespace through that link.
type AccountService struct {
	store      *storage.Store
	amqpClient *amqp.Client
}

func NewAccountService(store *storage.Store, amqpClient *amqp.Client) *AccountService {
	return &AccountService{store: store, amqpClient: amqpClient}
}

// AccountInput carries the caller-settable account fields. Balance is the
// absolute balance to set; on update the opening-balance baseline shifts by
// the same delta so the audit invariant keeps holding.
type AccountInput struct {
	Name    string
	Type    core.AccountType
	Balance core.Money
}

// CreateAccount creates the account and its shadow payee in one unit of work.
func (s *AccountService) CreateAccount(ctx context.Context, in AccountInput) (core.Account, error) {
	account := core.Account{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		Balance:        in.Balance,
		OpeningBalance: in.Balance,
	}
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		inUse, err := q.PayeeNameInUse(ctx, account.Name, account.ID)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("name %q already taken by an account or payee: %w", account.Name, core.ErrConflict)
		}
		if err := q.CreateAccount(ctx, account); err != nil {
			return err
		}
		shadow := core.Payee{
			ID:        uuid.NewString(),
			Name:      account.Name,
			Icon:      core.ShadowIcon(account.Name),
			AccountID: account.ID,
		}
		return q.CreatePayee(ctx, shadow)
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// UpdateAccount renames, retypes or rebalances an account. A rename renames
// the shadow payee too; a balance edit is an opening-balance adjustment, not
// a ledger movement.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, in AccountInput) (core.Account, error) {
	name := strings.TrimSpace(in.Name)

	var updated core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		account, err := q.GetAccount(ctx, id)
		if err != nil {
			return err
		}

		account.Name = name
		account.Type = in.Type
		if err := account.Validate(); err != nil {
			return err
		}

		inUse, err := q.PayeeNameInUse(ctx, name, id)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("name %q already taken by an account or payee: %w", name, core.ErrConflict)
		}

		delta := in.Balance.Cents - account.Balance.Cents
		account.Balance = in.Balance
		account.OpeningBalance.Cents += delta

		if err := q.UpdateAccount(ctx, account); err != nil {
			return err
		}

		shadow, err := q.GetPayeeByAccount(ctx, id)
		if err != nil {
			return err
		}
		shadow.Name = name
		shadow.Icon = core.ShadowIcon(name)
		if err := q.UpdatePayee(ctx, shadow); err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}

	s.publishAccountUpdated(ctx, updated.ID)
	return updated, nil
}

// DeleteAccount removes an account. With dependents it requires a transfer
// target: the funded side moves to the target account and the payee side to
// the target's shadow payee, then the shadow payee and the account go.
func (s *AccountService) DeleteAccount(ctx context.Context, id, transferTo string) error {
	if transferTo == id {
		return fmt.Errorf("transfer target is the deleted account: %w", core.ErrInvalidArgument)
	}

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetAccount(ctx, id); err != nil {
			return err
		}
		shadow, err := q.GetPayeeByAccount(ctx, id)
		if err != nil {
			return err
		}

		dependents, err := q.CountAccountDependents(ctx, id, shadow.ID)
		if err != nil {
			return err
		}
		if dependents > 0 {
			if transferTo == "" {
				return fmt.Errorf("account has %d transactions and no transfer target: %w", dependents, core.ErrPreconditionFailed)
			}
			target, err := q.GetAccount(ctx, transferTo)
			if err != nil {
				return err
			}
			targetShadow, err := q.GetPayeeByAccount(ctx, transferTo)
			if err != nil {
				return err
			}

			// The reassigned rows add their signed effects to the target's
			// ledger history without moving its balance, so the target's
			// opening-balance baseline shifts by the negated net effect to
			// keep balance == opening + Σ effects holding.
			outgoing, err := q.SumSourceEffects(ctx, id)
			if err != nil {
				return err
			}
			incoming, err := q.SumIncomingTransferMagnitude(ctx, id)
			if err != nil {
				return err
			}
			netEffect := outgoing.Cents + core.TransferTargetDelta(incoming, target.Type).Cents

			if err := q.ReassignTransactionsSource(ctx, id, transferTo); err != nil {
				return err
			}
			if err := q.ReassignTransactionsPayee(ctx, shadow.ID, targetShadow.ID, transferTo); err != nil {
				return err
			}

			target.OpeningBalance.Cents -= netEffect
			if err := q.UpdateAccount(ctx, target); err != nil {
				return err
			}
		}

		if err := q.DeletePayee(ctx, shadow.ID); err != nil {
			return err
		}
		return q.DeleteAccount(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if transferTo != "" {
		s.publishAccountUpdated(ctx, transferTo)
	}
	return nil
}

// GetAccount loads one account.
func (s *AccountService) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return s.store.Queries().GetAccount(ctx, id)
}

// ListAccounts lists all accounts.
func (s *AccountService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.Queries().ListAccounts(ctx)
}

func (s *AccountService) publishAccountUpdated(ctx context.Context, accountID string) {
	if s.amqpClient == nil {
		return
	}
	event := amqp.NewLedgerEvent(amqp.EventAccountUpdated, accountID, accountID)
	if err := s.amqpClient.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish account event",
			"error", err,
			"account_id", accountID)
	}
}
