package reporting

import (
	"context"
	"errors"
	"testing"

	"telephony-common/internal/calls"
)

type failingLister struct{}

func (failingLister) List(context.Context) ([]*calls.Record, error) {
	return nil, errors.New("db down")
}

func seed(t *testing.T) *calls.MemoryRepo {
	t.Helper()
	repo := calls.NewMemoryRepo()
	put := func(id int, st calls.State, cause calls.DisconnectCause, pres calls.Presentation) {
		r := calls.NewRecord(id)
		r.SetState(st)
		r.SetDisconnectCause(cause)
		r.SetNumberPresentation(pres)
		if err := repo.Put(context.Background(), r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	put(1, calls.StateActive, calls.CauseBusy, calls.PresentationAllowed) // cause hidden while live
	put(2, calls.StateDisconnected, calls.CauseBusy, calls.PresentationAllowed)
	put(3, calls.StateDisconnected, calls.CauseIncomingMissed, calls.PresentationRestricted)
	put(4, calls.StateIdle, calls.CauseLostSignal, calls.PresentationAllowed)
	put(5, calls.StateDisconnected, calls.CauseNormal, calls.PresentationAllowed)
	put(6, calls.StateIncoming, calls.CauseNotDisconnected, calls.PresentationUnknown)
	put(7, calls.StateDisconnected, calls.CauseInvalidNumber, calls.PresentationAllowed)
	put(8, calls.StateDisconnected, calls.CauseCallBarred, calls.PresentationAllowed)
	put(9, calls.StateIdle, calls.CauseCDMADrop, calls.PresentationAllowed)
	return repo
}

func TestCallsSummary_CountsProjectedCauses(t *testing.T) {
	svc := NewService(seed(t))

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 9 || out.LiveCalls != 2 || out.EndedCalls != 7 {
		t.Fatalf("unexpected totals: %+v", out)
	}
	if out.BusyCalls != 1 {
		t.Fatalf("busy should only count ended calls, got %d", out.BusyCalls)
	}
	if out.MissedCalls != 1 || out.RejectedCalls != 0 {
		t.Fatalf("unexpected cause buckets: %+v", out)
	}
	if out.DroppedCalls != 2 {
		t.Fatalf("expected LOST_SIGNAL and CDMA_DROP as drops, got %d", out.DroppedCalls)
	}
	if out.FailedCalls != 2 {
		t.Fatalf("expected INVALID_NUMBER and CALL_BARRED as failures, got %d", out.FailedCalls)
	}
	if out.ByCause["NOT_DISCONNECTED"] != 2 {
		t.Fatalf("expected 2 live calls under NOT_DISCONNECTED, got %d", out.ByCause["NOT_DISCONNECTED"])
	}
	if out.ByState["DISCONNECTED"] != 5 {
		t.Fatalf("expected 5 DISCONNECTED, got %d", out.ByState["DISCONNECTED"])
	}
	if out.RestrictedNumbers != 1 {
		t.Fatalf("expected 1 restricted number, got %d", out.RestrictedNumbers)
	}
}

func TestCallsSummary_FiltersByState(t *testing.T) {
	svc := NewService(seed(t))

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{States: []string{"IDLE", "INCOMING"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 3 || out.DroppedCalls != 2 || out.FailedCalls != 0 {
		t.Fatalf("unexpected summary: %+v", out)
	}
}

func TestCallsSummary_RejectsUnknownState(t *testing.T) {
	svc := NewService(seed(t))
	if _, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{States: []string{"RINGING"}}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCallsSummary_PropagatesRepoErrors(t *testing.T) {
	if _, err := NewService(failingLister{}).CallsSummary(context.Background(), CallsSummaryRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewService(nil).CallsSummary(context.Background(), CallsSummaryRequest{}); err == nil {
		t.Fatalf("expected error")
	}
}
