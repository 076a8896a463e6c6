package domain

type TransactionKind string
type DisputeState string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"

	// StateUndisputed covers transactions that were never disputed as well
	// as transactions whose dispute has been resolved.
	StateUndisputed  DisputeState = "undisputed"
	StateDisputed    DisputeState = "disputed"
	StateChargedBack DisputeState = "charged_back"
)

// Transaction is a deposit or withdrawal applied to one account. Apart from
// DisputeState it is immutable once accepted into an account's history.
type Transaction struct {
	// ID is unique across the whole run, not per account.
	ID           uint32
	ClientID     uint16
	Amount       Amount
	Kind         TransactionKind
	DisputeState DisputeState
}

// Event is any parsed input event that can be routed to the account owning it.
type Event interface {
	Client() uint16
}

func (t Transaction) Client() uint16 { return t.ClientID }
