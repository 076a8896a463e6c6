package ledger

import (
	"fmt"

	"payment_engine/internal/domain"
)

// Account holds one client's monetary state: the available and held
// balances, the full transaction history, and the frozen latch. All four
// mutating operations keep the core invariants: both balances stay
// non-negative, and the held balance always equals the sum of the amounts
// of this account's currently disputed transactions.
//
// An Account is not safe for concurrent use; its owner applies events to
// it strictly in arrival order.
type Account struct {
	id           uint16
	available    domain.Amount
	held         domain.Amount
	transactions map[uint32]*domain.Transaction
	frozen       bool
}

func NewAccount(id uint16) *Account {
	return &Account{
		id:           id,
		transactions: make(map[uint32]*domain.Transaction),
	}
}

// Register applies a new deposit or withdrawal. A frozen account rejects
// all new transactions (dispute actions on existing ones remain allowed),
// duplicate transaction ids are rejected, and a withdrawal exceeding the
// available balance is rejected whole rather than partially applied.
func (a *Account) Register(tx domain.Transaction) error {
	if a.frozen {
		return fmt.Errorf("%w: client %d", ErrAccountFrozen, a.id)
	}
	if _, exists := a.transactions[tx.ID]; exists {
		return fmt.Errorf("%w: tx %d", ErrDuplicateTransaction, tx.ID)
	}

	switch tx.Kind {
	case domain.KindDeposit:
		available, err := a.available.Add(tx.Amount)
		if err != nil {
			return fmt.Errorf("%w: available balance overflow on tx %d", ErrInvariantViolation, tx.ID)
		}
		a.available = available
	case domain.KindWithdrawal:
		available, err := a.available.Sub(tx.Amount)
		if err != nil {
			return fmt.Errorf("%w: tx %d", ErrInsufficientFunds, tx.ID)
		}
		a.available = available
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, tx.Kind)
	}

	tx.DisputeState = domain.StateUndisputed
	a.transactions[tx.ID] = &tx
	return nil
}

// Dispute moves an undisputed deposit's amount from available to held.
// Only deposits can be disputed: once a withdrawal has been processed the
// money is gone and there is nothing to hold against. If the deposited
// funds have since been partially withdrawn the dispute is rejected whole
// rather than partially honored; the transaction stays undisputed.
func (a *Account) Dispute(txID uint32) error {
	tx, exists := a.transactions[txID]
	if !exists {
		return fmt.Errorf("%w: tx %d", ErrUnknownTransaction, txID)
	}
	if tx.DisputeState != domain.StateUndisputed {
		return fmt.Errorf("%w: tx %d is %s", ErrInvalidDisputeState, txID, tx.DisputeState)
	}
	if tx.Kind != domain.KindDeposit {
		return fmt.Errorf("%w: tx %d is a %s", ErrNotDisputable, txID, tx.Kind)
	}

	available, err := a.available.Sub(tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: tx %d", ErrInsufficientFunds, txID)
	}
	held, err := a.held.Add(tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: held balance overflow on tx %d", ErrInvariantViolation, txID)
	}

	a.available = available
	a.held = held
	tx.DisputeState = domain.StateDisputed
	return nil
}

// Resolve cancels a dispute, returning the held amount to available.
func (a *Account) Resolve(txID uint32) error {
	tx, exists := a.transactions[txID]
	if !exists {
		return fmt.Errorf("%w: tx %d", ErrUnknownTransaction, txID)
	}
	if tx.DisputeState != domain.StateDisputed {
		return fmt.Errorf("%w: tx %d is %s", ErrInvalidDisputeState, txID, tx.DisputeState)
	}

	// Every disputed transaction contributed its amount to held, so the
	// subtraction cannot fail unless that invariant was already broken.
	held, err := a.held.Sub(tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: held balance below zero on resolve of tx %d", ErrInvariantViolation, txID)
	}
	available, err := a.available.Add(tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: available balance overflow on resolve of tx %d", ErrInvariantViolation, txID)
	}

	a.held = held
	a.available = available
	tx.DisputeState = domain.StateUndisputed
	return nil
}

// Chargeback forfeits a disputed deposit's held funds and freezes the
// account. The transaction ends in a terminal state; the freeze is an
// account-wide latch that never clears.
func (a *Account) Chargeback(txID uint32) error {
	tx, exists := a.transactions[txID]
	if !exists {
		return fmt.Errorf("%w: tx %d", ErrUnknownTransaction, txID)
	}
	if tx.DisputeState != domain.StateDisputed {
		return fmt.Errorf("%w: tx %d is %s", ErrInvalidDisputeState, txID, tx.DisputeState)
	}

	held, err := a.held.Sub(tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: held balance below zero on chargeback of tx %d", ErrInvariantViolation, txID)
	}

	a.held = held
	a.frozen = true
	tx.DisputeState = domain.StateChargedBack
	return nil
}

func (a *Account) ID() uint16               { return a.id }
func (a *Account) Available() domain.Amount { return a.available }
func (a *Account) Held() domain.Amount      { return a.held }
func (a *Account) Frozen() bool             { return a.frozen }

// Transaction returns a copy of the stored transaction, if present.
func (a *Account) Transaction(txID uint32) (domain.Transaction, bool) {
	tx, exists := a.transactions[txID]
	if !exists {
		return domain.Transaction{}, false
	}
	return *tx, true
}

// HistoryLen reports the number of accepted transactions.
func (a *Account) HistoryLen() int { return len(a.transactions) }

// Snapshot is the read-only projection of an account's final state.
// Total is always derived from the other two balances, never stored.
type Snapshot struct {
	Client    uint16
	Available domain.Amount
	Held      domain.Amount
	Total     domain.Amount
	Locked    bool
}

func (a *Account) Snapshot() (Snapshot, error) {
	total, err := a.available.Add(a.held)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: total balance overflow for client %d", ErrInvariantViolation, a.id)
	}
	return Snapshot{
		Client:    a.id,
		Available: a.available,
		Held:      a.held,
		Total:     total,
		Locked:    a.frozen,
	}, nil
}
