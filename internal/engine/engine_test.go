package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"payment_engine/internal/domain"
	"payment_engine/internal/ledger"
)

func apply(t *testing.T, e *Engine, events []domain.Event) {
	t.Helper()
	ctx := context.Background()
	for i, event := range events {
		if err := e.Apply(ctx, event); err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
	}
}

func TestEngine_RoutesEventsByClient(t *testing.T) {
	e := New(nil, nil)

	apply(t, e, []domain.Event{
		domain.Transaction{ID: 1, ClientID: 1, Amount: 100000, Kind: domain.KindDeposit},
		domain.Transaction{ID: 2, ClientID: 2, Amount: 50000, Kind: domain.KindDeposit},
		domain.Transaction{ID: 3, ClientID: 1, Amount: 20000, Kind: domain.KindWithdrawal},
	})

	snapshots, err := e.Snapshots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(snapshots))
	}
	if snapshots[0].Client != 1 || snapshots[0].Available != 80000 {
		t.Errorf("client 1: expected available 8, got %+v", snapshots[0])
	}
	if snapshots[1].Client != 2 || snapshots[1].Available != 50000 {
		t.Errorf("client 2: expected available 5, got %+v", snapshots[1])
	}
}

func TestEngine_RejectionsAreSwallowed(t *testing.T) {
	e := New(nil, nil)

	apply(t, e, []domain.Event{
		domain.Transaction{ID: 1, ClientID: 1, Amount: 100000, Kind: domain.KindDeposit},
		// All of these are expected rejections and must not fail the run.
		domain.Transaction{ID: 1, ClientID: 1, Amount: 999999, Kind: domain.KindDeposit},
		domain.Transaction{ID: 2, ClientID: 1, Amount: 200000, Kind: domain.KindWithdrawal},
		domain.DisputeAction{Kind: domain.ActionDispute, ClientID: 1, TransactionID: 42},
		domain.DisputeAction{Kind: domain.ActionResolve, ClientID: 1, TransactionID: 1},
		domain.DisputeAction{Kind: domain.ActionChargeback, ClientID: 1, TransactionID: 1},
	})

	snapshots, err := e.Snapshots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 account, got %d", len(snapshots))
	}
	s := snapshots[0]
	if s.Available != 100000 || s.Held != 0 || s.Locked {
		t.Errorf("expected untouched balances, got %+v", s)
	}
}

func TestEngine_DisputeLifecycle(t *testing.T) {
	e := New(nil, nil)

	apply(t, e, []domain.Event{
		domain.Transaction{ID: 1, ClientID: 9, Amount: 100000, Kind: domain.KindDeposit},
		domain.DisputeAction{Kind: domain.ActionDispute, ClientID: 9, TransactionID: 1},
		domain.DisputeAction{Kind: domain.ActionChargeback, ClientID: 9, TransactionID: 1},
		// Registration after the freeze is dropped.
		domain.Transaction{ID: 2, ClientID: 9, Amount: 150000, Kind: domain.KindDeposit},
	})

	snapshots, err := e.Snapshots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := snapshots[0]
	if s.Available != 0 || s.Held != 0 || s.Total != 0 {
		t.Errorf("expected zero balances, got %+v", s)
	}
	if !s.Locked {
		t.Error("expected account locked after chargeback")
	}
}

func TestEngine_DisputeRoutedToWrongClientIsNoOp(t *testing.T) {
	e := New(nil, nil)

	apply(t, e, []domain.Event{
		domain.Transaction{ID: 1, ClientID: 1, Amount: 100000, Kind: domain.KindDeposit},
		// Client 2 never saw tx 1, so this references an unknown transaction
		// and creates an empty account for client 2.
		domain.DisputeAction{Kind: domain.ActionDispute, ClientID: 2, TransactionID: 1},
	})

	snapshots, err := e.Snapshots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(snapshots))
	}
	if snapshots[0].Held != 0 || snapshots[1].Held != 0 {
		t.Errorf("expected no held funds, got %+v", snapshots)
	}
}

func TestEngine_InvariantViolationAbortsRun(t *testing.T) {
	e := New(nil, nil)

	apply(t, e, []domain.Event{
		domain.Transaction{ID: 1, ClientID: 1, Amount: domain.Amount(math.MaxInt64), Kind: domain.KindDeposit},
	})
	// Unlike an expected rejection, balance overflow must fail the run.
	err := e.Apply(context.Background(), domain.Transaction{ID: 2, ClientID: 1, Amount: 1, Kind: domain.KindDeposit})

	if !errors.Is(err, ledger.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}

func sampleEvents() []domain.Event {
	var events []domain.Event
	for client := uint16(1); client <= 8; client++ {
		base := uint32(client) * 100
		events = append(events,
			domain.Transaction{ID: base + 1, ClientID: client, Amount: 100000, Kind: domain.KindDeposit},
			domain.Transaction{ID: base + 2, ClientID: client, Amount: 30000, Kind: domain.KindDeposit},
			domain.Transaction{ID: base + 3, ClientID: client, Amount: 20000, Kind: domain.KindWithdrawal},
			domain.DisputeAction{Kind: domain.ActionDispute, ClientID: client, TransactionID: base + 2},
		)
		if client%2 == 0 {
			events = append(events, domain.DisputeAction{Kind: domain.ActionResolve, ClientID: client, TransactionID: base + 2})
		} else {
			events = append(events, domain.DisputeAction{Kind: domain.ActionChargeback, ClientID: client, TransactionID: base + 2})
		}
	}
	return events
}

func TestSharded_MatchesSequentialOutcome(t *testing.T) {
	events := sampleEvents()

	sequential := New(nil, nil)
	apply(t, sequential, events)
	want, err := sequential.Snapshots()
	if err != nil {
		t.Fatalf("sequential snapshots: %v", err)
	}

	sharded := NewSharded(context.Background(), 3, nil, nil)
	for i, event := range events {
		if err := sharded.Apply(event); err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
	}
	if err := sharded.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := sharded.Snapshots()
	if err != nil {
		t.Fatalf("sharded snapshots: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d differs: sequential %+v, sharded %+v", i, want[i], got[i])
		}
	}
}

func TestSharded_SingleShard(t *testing.T) {
	sharded := NewSharded(context.Background(), 1, nil, nil)

	if err := sharded.Apply(domain.Transaction{ID: 1, ClientID: 1, Amount: 100000, Kind: domain.KindDeposit}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := sharded.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	snapshots, err := sharded.Snapshots()
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].Available != 100000 {
		t.Errorf("unexpected snapshots: %+v", snapshots)
	}
}

func TestSharded_SharesOneRunID(t *testing.T) {
	sharded := NewSharded(context.Background(), 4, nil, nil)
	defer sharded.Close()

	runID := sharded.engines[0].RunID()
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}
	for i, engine := range sharded.engines {
		if engine.RunID() != runID {
			t.Errorf("shard %d: run id %q differs from %q", i, engine.RunID(), runID)
		}
	}
}

func TestEngine_RunIDIsStable(t *testing.T) {
	e := New(nil, nil)

	if e.RunID() == "" {
		t.Fatal("expected non-empty run id")
	}
	if e.RunID() != e.RunID() {
		t.Error("expected stable run id")
	}
}
