package reporting

import (
	"context"
	"errors"
	"fmt"

	"telephony-common/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Service summarizes stored call snapshots. It reads through calls.Lister and
// never writes.
type Service struct {
	repo calls.Lister
}

func NewService(repo calls.Lister) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	want := map[calls.State]bool{}
	for _, label := range req.States {
		st, err := calls.ParseState(label)
		if err != nil {
			return CallsSummary{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		want[st] = true
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{ByState: map[string]int{}, ByCause: map[string]int{}}
	for _, r := range rows {
		if len(want) > 0 && !want[r.State()] {
			continue
		}
		out.TotalCalls++
		out.ByState[r.State().String()]++

		cause := r.DisconnectCause()
		out.ByCause[cause.String()]++

		if r.NumberPresentation() == calls.PresentationRestricted {
			out.RestrictedNumbers++
		}

		switch r.State() {
		case calls.StateDialing, calls.StateIncoming, calls.StateCallWaiting, calls.StateActive, calls.StateOnHold:
			out.LiveCalls++
		case calls.StateDisconnected, calls.StateIdle:
			out.EndedCalls++
		}

		switch {
		case cause == calls.CauseIncomingMissed:
			out.MissedCalls++
		case cause == calls.CauseIncomingRejected:
			out.RejectedCalls++
		case cause == calls.CauseBusy:
			out.BusyCalls++
		case isDrop(cause):
			out.DroppedCalls++
		case isFailure(cause):
			out.FailedCalls++
		}
	}
	return out, nil
}

// isDrop reports causes that end a call that was already up.
func isDrop(c calls.DisconnectCause) bool {
	switch c {
	case calls.CauseLostSignal, calls.CauseOutOfService, calls.CauseCDMADrop,
		calls.CauseCDMAIntercept, calls.CauseCDMAPreempted:
		return true
	}
	return false
}

// isFailure reports every remaining cause that is not a hangup, miss,
// rejection or busy signal.
func isFailure(c calls.DisconnectCause) bool {
	switch c {
	case calls.CauseNotDisconnected, calls.CauseIncomingMissed, calls.CauseNormal, calls.CauseLocal,
		calls.CauseBusy, calls.CauseIncomingRejected, calls.CauseMMI:
		return false
	}
	return c.Valid() && !isDrop(c)
}
