package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/XaviGIT/budget-app/internal/amqp"
	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/services"
	"github.com/XaviGIT/budget-app/internal/sheets"
	"github.com/XaviGIT/budget-app/internal/storage"
)

// AuditWorker re-verifies the balance invariant out of band: for every
// account, balance == opening balance + the sum of all signed effects of
// its transactions. Ledger events name the accounts a mutation touched; a
// periodic full sweep catches anything the stream missed.
type AuditWorker struct {
	store    *storage.Store
	budgets  *services.BudgetService
	snapshot sheets.BudgetSnapshotWriter // optional
}

func NewAuditWorker(store *storage.Store, budgets *services.BudgetService, snapshot sheets.BudgetSnapshotWriter) *AuditWorker {
	return &AuditWorker{
		store:    store,
		budgets:  budgets,
		snapshot: snapshot,
	}
}

// HandleLedgerEvent audits every account the event names. An account that
// no longer exists is skipped: failing here would requeue the message and
// it can never succeed.
func (w *AuditWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	for _, accountID := range event.AccountIDs {
		_, err := w.AuditAccount(ctx, accountID)
		if errors.Is(err, core.ErrNotFound) {
			slog.InfoContext(ctx, "Skipping audit of deleted account",
				"account_id", accountID,
				"event_kind", event.Kind)
			continue
		}
		if err != nil {
			return fmt.Errorf("audit account %s: %w", accountID, err)
		}
	}
	return nil
}

// AuditAccount recomputes one account's balance from its ledger history and
// returns the drift against the stored balance. Drift is logged, never
// repaired: a nonzero value means a bug in the mutation engine or a write
// that bypassed it.
func (w *AuditWorker) AuditAccount(ctx context.Context, accountID string) (int64, error) {
	q := w.store.Queries()

	account, err := q.GetAccount(ctx, accountID)
	if err != nil {
		// The account may have been deleted since the event was published.
		return 0, err
	}

	outgoing, err := q.SumSourceEffects(ctx, accountID)
	if err != nil {
		return 0, err
	}
	incoming, err := q.SumIncomingTransferMagnitude(ctx, accountID)
	if err != nil {
		return 0, err
	}
	incomingDelta := core.TransferTargetDelta(incoming, account.Type)

	expected := account.OpeningBalance.Cents + outgoing.Cents + incomingDelta.Cents
	drift := account.Balance.Cents - expected
	if drift != 0 {
		slog.ErrorContext(ctx, "Balance invariant violated",
			"account_id", accountID,
			"balance_cents", account.Balance.Cents,
			"expected_cents", expected,
			"drift_cents", drift)
	} else {
		slog.DebugContext(ctx, "Balance audit clean",
			"account_id", accountID,
			"balance_cents", account.Balance.Cents)
	}
	return drift, nil
}

// AuditAll sweeps every account and reports how many drifted.
func (w *AuditWorker) AuditAll(ctx context.Context) (int, error) {
	accounts, err := w.store.Queries().ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	drifted := 0
	for _, account := range accounts {
		drift, err := w.AuditAccount(ctx, account.ID)
		if err != nil {
			return drifted, err
		}
		if drift != 0 {
			drifted++
		}
	}
	slog.InfoContext(ctx, "Completed full balance audit",
		"accounts", len(accounts),
		"drifted", drifted)
	return drifted, nil
}

// RunPeriodicAudit sweeps all accounts every interval until ctx is done,
// exporting a budget snapshot of the current month after each clean sweep
// when an exporter is configured.
func (w *AuditWorker) RunPeriodicAudit(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.AuditAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Full balance audit failed", "error", err)
				continue
			}
			if w.snapshot != nil {
				if err := w.ExportSnapshot(ctx, core.MonthOf(time.Now())); err != nil {
					slog.ErrorContext(ctx, "Budget snapshot export failed", "error", err)
				}
			}
		}
	}
}

// ExportSnapshot appends one row per category of the month's budget read
// model to the configured snapshot writer.
func (w *AuditWorker) ExportSnapshot(ctx context.Context, month core.Month) error {
	if w.snapshot == nil {
		return nil
	}

	model, err := w.budgets.GetBudget(ctx, month)
	if err != nil {
		return fmt.Errorf("build budget snapshot: %w", err)
	}

	var rows []sheets.BudgetSnapshotRow
	for _, group := range model.Groups {
		for _, c := range group.Categories {
			rows = append(rows, sheets.BudgetSnapshotRow{
				Month:         month.String(),
				Group:         group.Group.Name,
				Category:      c.Category.Name,
				AssignedCents: c.Assigned.Cents,
				SpentCents:    c.Spent.Cents,
			})
		}
	}

	ref, err := w.snapshot.AppendSnapshot(ctx, rows)
	if err != nil {
		return fmt.Errorf("export budget snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Exported budget snapshot",
		"month", month.String(),
		"rows", len(rows),
		"sheets_ref", ref)
	return nil
}
