package audit

import (
	"context"
	"testing"
	"time"

	"telephony-common/internal/calls"
)

func TestService_AppendRequiresTypeAndCall(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{CallID: 1}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{Type: EventTypeCallSaved, CallID: calls.InvalidCallID}); err == nil {
		t.Fatalf("expected error")
	}
	if err := NewService(nil).Append(context.Background(), Event{Type: EventTypeCallSaved, CallID: 1}); err != ErrRepoNotConfigured {
		t.Fatalf("err = %v, want ErrRepoNotConfigured", err)
	}
}

func TestService_LogCallSavedCapturesProjectedCause(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.clock = func() time.Time { return fixed }

	r := calls.NewRecord(7)
	r.SetState(calls.StateActive)
	r.SetDisconnectCause(calls.CauseBusy)

	if err := svc.LogCallSaved(context.Background(), "op-1", "operator", "10.0.0.1", r); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.ID == "" || !e.CreatedAt.Equal(fixed) {
		t.Fatalf("expected id and timestamp filled, got %+v", e)
	}
	if e.IPAddress != "10.0.0.1" || e.OperatorID != "op-1" {
		t.Fatalf("expected actor captured, got %+v", e)
	}
	if e.State != "ACTIVE" || e.DisconnectCause != "NOT_DISCONNECTED" {
		t.Fatalf("expected projected labels, got state=%s cause=%s", e.State, e.DisconnectCause)
	}
}

func TestService_ListNewestFirstAndClamped(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	for i := 0; i < 3; i++ {
		_ = svc.LogCallSaved(context.Background(), "op", "operator", "", calls.NewRecord(1))
	}
	_ = svc.LogCallSaved(context.Background(), "op", "operator", "", calls.NewRecord(2))

	evs, err := svc.List(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	all := repo.Events()
	if evs[0].ID != all[2].ID || evs[1].ID != all[1].ID {
		t.Fatalf("expected newest first")
	}

	evs, _ = svc.List(context.Background(), 1, 0)
	if len(evs) != 3 {
		t.Fatalf("default limit should return all 3, got %d", len(evs))
	}
}
