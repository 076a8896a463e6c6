package domain

type DisputeActionKind string

const (
	ActionDispute    DisputeActionKind = "dispute"
	ActionResolve    DisputeActionKind = "resolve"
	ActionChargeback DisputeActionKind = "chargeback"
)

// DisputeAction is an instruction to change the dispute state of a prior
// transaction. It is applied and discarded, never stored.
type DisputeAction struct {
	Kind          DisputeActionKind
	ClientID      uint16
	TransactionID uint32
}

func (d DisputeAction) Client() uint16 { return d.ClientID }
