package validator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"payment_engine/internal/domain"
)

var (
	ErrUnknownType   = errors.New("unknown event type")
	ErrInvalidClient = errors.New("invalid client id")
	ErrInvalidTxID   = errors.New("invalid transaction id")
	ErrMissingAmount = errors.New("missing amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Record is one raw input row before any typing: every field is the text
// exactly as it appeared (whitespace already trimmed by the reader).
// Amount is empty for dispute-action rows.
type Record struct {
	Type   string
	Client string
	TxID   string
	Amount string
}

// EventValidator turns raw records into typed events, rejecting anything
// the core must never see: unknown type strings, out-of-range ids,
// negative or unparsable amounts.
type EventValidator struct{}

func NewEventValidator() *EventValidator {
	return &EventValidator{}
}

// ParseEvent converts a record to a domain.Transaction or
// domain.DisputeAction, or reports why it matches neither shape.
func (v *EventValidator) ParseEvent(rec Record) (domain.Event, error) {
	client, err := strconv.ParseUint(rec.Client, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClient, rec.Client)
	}
	txID, err := strconv.ParseUint(rec.TxID, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, rec.TxID)
	}

	switch domain.TransactionKind(rec.Type) {
	case domain.KindDeposit, domain.KindWithdrawal:
		amount, err := v.parseAmount(rec.Amount)
		if err != nil {
			return nil, err
		}
		return domain.Transaction{
			ID:           uint32(txID),
			ClientID:     uint16(client),
			Amount:       amount,
			Kind:         domain.TransactionKind(rec.Type),
			DisputeState: domain.StateUndisputed,
		}, nil
	}

	switch domain.DisputeActionKind(rec.Type) {
	case domain.ActionDispute, domain.ActionResolve, domain.ActionChargeback:
		// Dispute actions carry no amount; a stray value is ignored.
		return domain.DisputeAction{
			Kind:          domain.DisputeActionKind(rec.Type),
			ClientID:      uint16(client),
			TransactionID: uint32(txID),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
}

func (v *EventValidator) parseAmount(raw string) (domain.Amount, error) {
	if raw == "" {
		return 0, ErrMissingAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	amount, err := domain.AmountFromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	return amount, nil
}
