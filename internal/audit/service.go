package audit

import (
	"context"
	"errors"
	"time"

	"telephony-common/internal/calls"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, callID, limit int) ([]Event, error)
}

// Service journals who wrote which call snapshot.
//
// Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	ErrInvalidEvent      = errors.New("audit: invalid event")
	ErrRepoNotConfigured = errors.New("audit: repository not configured")
)

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return ErrRepoNotConfigured
	}
	if e.Type == "" || e.CallID == calls.InvalidCallID {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogCallSaved records that operatorID stored r.
func (s *Service) LogCallSaved(ctx context.Context, operatorID, role, ip string, r *calls.Record) error {
	return s.Append(ctx, Event{
		Type:            EventTypeCallSaved,
		OperatorID:      operatorID,
		Role:            role,
		IPAddress:       ip,
		CallID:          r.CallID(),
		State:           r.State().String(),
		DisconnectCause: r.DisconnectCause().String(),
		Message:         r.String(),
	})
}

// LogParcelDecoded records that operatorID submitted a parcel carrying r.
func (s *Service) LogParcelDecoded(ctx context.Context, operatorID, role, ip string, r *calls.Record) error {
	return s.Append(ctx, Event{
		Type:            EventTypeParcelDecoded,
		OperatorID:      operatorID,
		Role:            role,
		IPAddress:       ip,
		CallID:          r.CallID(),
		State:           r.State().String(),
		DisconnectCause: r.DisconnectCause().String(),
	})
}

// List returns the journal for callID, newest first. limit is clamped to
// [1, MaxListLimit]; zero selects DefaultListLimit.
func (s *Service) List(ctx context.Context, callID, limit int) ([]Event, error) {
	if s.repo == nil {
		return nil, ErrRepoNotConfigured
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.repo.List(ctx, callID, limit)
}
