package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"payment_engine/internal/domain"
	"payment_engine/internal/ledger"
	"payment_engine/pkg/metrics"
)

// Engine routes parsed events to the owning account and applies them in
// arrival order. Expected rejections (duplicate ids, overdrafts, writes to
// frozen accounts, invalid dispute transitions) are dropped without
// mutation and without failing the run; invariant violations abort it.
type Engine struct {
	registry *ledger.Registry
	metrics  *metrics.Collector
	logger   *slog.Logger
	runID    string
}

func New(collector *metrics.Collector, logger *slog.Logger) *Engine {
	return newWithRunID(collector, logger, uuid.NewString())
}

// newWithRunID lets the sharded mode attribute all shard engines of one run
// to the same id.
func newWithRunID(collector *metrics.Collector, logger *slog.Logger, runID string) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: ledger.NewRegistry(),
		metrics:  collector,
		logger:   logger.With(slog.String("run_id", runID)),
		runID:    runID,
	}
}

func (e *Engine) RunID() string { return e.runID }

// Apply routes one event to its account. It returns an error only for
// fatal internal-consistency failures; expected rejections are counted,
// logged at debug, and swallowed.
func (e *Engine) Apply(ctx context.Context, event domain.Event) error {
	account, created := e.registry.Account(event.Client())
	if created {
		e.metrics.AccountCreated()
	}

	var err error
	switch ev := event.(type) {
	case domain.Transaction:
		err = account.Register(ev)
		if err == nil {
			e.metrics.EventProcessed()
		}
	case domain.DisputeAction:
		err = e.applyDisputeAction(account, ev)
	default:
		err = fmt.Errorf("%w: %T", ledger.ErrUnknownKind, event)
	}

	if err == nil {
		return nil
	}
	if !ledger.IsRejection(err) {
		e.logger.ErrorContext(ctx, "Invariant violation, aborting run",
			slog.Uint64("client", uint64(event.Client())),
			slog.String("error", err.Error()))
		return err
	}

	e.metrics.EventDropped(dropReason(err))
	e.logger.DebugContext(ctx, "Event dropped",
		slog.Uint64("client", uint64(event.Client())),
		slog.String("reason", err.Error()))
	return nil
}

func (e *Engine) applyDisputeAction(account *ledger.Account, action domain.DisputeAction) error {
	switch action.Kind {
	case domain.ActionDispute:
		if err := account.Dispute(action.TransactionID); err != nil {
			return err
		}
		e.metrics.DisputeOpened()
	case domain.ActionResolve:
		if err := account.Resolve(action.TransactionID); err != nil {
			return err
		}
		e.metrics.DisputeResolved()
	case domain.ActionChargeback:
		if err := account.Chargeback(action.TransactionID); err != nil {
			return err
		}
		e.metrics.Chargeback()
		e.metrics.AccountFrozen()
	default:
		return fmt.Errorf("%w: dispute action %q", ledger.ErrUnknownKind, action.Kind)
	}
	e.metrics.EventProcessed()
	return nil
}

// Snapshots projects every account seen during the run, ordered by
// ascending client id.
func (e *Engine) Snapshots() ([]ledger.Snapshot, error) {
	return e.registry.Snapshots()
}

// dropReason maps a rejection to a stable metric label.
func dropReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrAccountFrozen):
		return "account_frozen"
	case errors.Is(err, ledger.ErrDuplicateTransaction):
		return "duplicate_transaction"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ledger.ErrUnknownTransaction):
		return "unknown_transaction"
	case errors.Is(err, ledger.ErrNotDisputable):
		return "not_disputable"
	case errors.Is(err, ledger.ErrInvalidDisputeState):
		return "invalid_dispute_state"
	default:
		return "other"
	}
}
