package calls

import (
	"context"
	"errors"
	"math"

	"telephony-common/pkg/logger"
	"telephony-common/pkg/metrics"
)

// Cache is a read-through cache in front of the Repository.
// Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, callID int) (*Record, error)
	Set(ctx context.Context, r *Record) error
}

// Publisher hands encoded records to other processes.
type Publisher interface {
	Publish(ctx context.Context, r *Record) error
}

// Service stores call snapshots reported by the call-management layer and
// serves them back, encoded or decoded.
//
// Cache and publisher failures are logged and never fail the caller; the
// repository is the source of truth.
type Service struct {
	repo    Repository
	cache   Cache
	pub     Publisher
	metrics *metrics.Codec
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }
func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }
func WithMetrics(m *metrics.Codec) Option { return func(s *Service) { s.metrics = m } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

var (
	ErrInvalidRecord = errors.New("calls: invalid record")
	// ErrCallIDRange is returned for ids that do not fit the int32 wire field.
	ErrCallIDRange = errors.New("calls: call_id out of int32 range")
)

func (s *Service) Get(ctx context.Context, callID int) (*Record, error) {
	log := logger.From(ctx)

	if s.cache != nil {
		r, err := s.cache.Get(ctx, callID)
		if err != nil {
			log.Warn("call cache read failed", "call_id", callID, "err", err)
		} else if r != nil {
			return r, nil
		}
	}
	if s.repo == nil {
		return nil, errors.New("calls: repository not configured")
	}
	r, err := s.repo.Get(ctx, callID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, r); err != nil {
			log.Warn("call cache fill failed", "call_id", callID, "err", err)
		}
	}
	return r, nil
}

// Save stores r and announces it. Records must carry an assigned id and values
// from the enumerated sets.
func (s *Service) Save(ctx context.Context, r *Record) error {
	if err := Validate(r); err != nil {
		return err
	}
	if s.repo == nil {
		return errors.New("calls: repository not configured")
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return err
	}

	log := logger.From(ctx)
	if s.cache != nil {
		if err := s.cache.Set(ctx, r); err != nil {
			log.Warn("call cache write failed", "call_id", r.CallID(), "err", err)
		}
	}
	if s.pub != nil {
		if err := s.pub.Publish(ctx, r); err != nil {
			log.Warn("call publish failed", "call_id", r.CallID(), "err", err)
		} else {
			s.metrics.Encoded()
		}
	}
	log.Debug("call saved", "call_id", r.CallID(), "state", r.State().String())
	return nil
}

// Encode returns the parcel form of the stored record.
func (s *Service) Encode(ctx context.Context, callID int) ([]byte, error) {
	r, err := s.Get(ctx, callID)
	if err != nil {
		return nil, err
	}
	s.metrics.Encoded()
	return Marshal(r), nil
}

// Decode parses a parcel, counting failures by reason.
func (s *Service) Decode(ctx context.Context, b []byte) (*Record, error) {
	r, err := Unmarshal(b)
	if err != nil {
		s.metrics.DecodeFailed(DecodeFailureReason(err))
		logger.From(ctx).Info("parcel rejected", "err", err, "size", len(b))
		return nil, err
	}
	s.metrics.Decoded()
	return r, nil
}

// Validate rejects records that could not survive a parcel round trip. Only the
// projected disconnect cause is checked since that is what gets written.
func Validate(r *Record) error {
	switch {
	case r == nil:
		return ErrInvalidRecord
	case r.CallID() == InvalidCallID:
		return errors.Join(ErrInvalidRecord, errors.New("call_id is unset"))
	case r.CallID() < math.MinInt32 || r.CallID() > math.MaxInt32:
		return errors.Join(ErrInvalidRecord, ErrCallIDRange)
	case !r.State().Valid():
		return errors.Join(ErrInvalidRecord, ErrInvalidState)
	case !r.NumberPresentation().Valid(), !r.CnapNamePresentation().Valid():
		return errors.Join(ErrInvalidRecord, ErrInvalidPresentation)
	case !r.DisconnectCause().Valid():
		return errors.Join(ErrInvalidRecord, ErrUnknownDisconnectCause)
	}
	return nil
}

// DecodeFailureReason maps a decode error to a short metric label.
func DecodeFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownDisconnectCause):
		return "unknown_cause"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidPresentation):
		return "invalid_presentation"
	case errors.Is(err, ErrShortParcel):
		return "short"
	default:
		return "other"
	}
}
