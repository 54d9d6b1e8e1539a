package calls

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the call id to form the publish subject.
const SubjectPrefix = "calls."

// Subject returns the subject a record is published on.
func Subject(callID int) string { return SubjectPrefix + strconv.Itoa(callID) }

// NATSPublisher fans encoded records out to other processes.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher { return &NATSPublisher{nc: nc} }

func (p *NATSPublisher) Publish(ctx context.Context, r *Record) error {
	if p.nc == nil {
		return errors.New("calls: nats connection is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(r.CallID()), Marshal(r)); err != nil {
		return fmt.Errorf("calls: publish: %w", err)
	}
	return nil
}

// Subscribe delivers every record published under SubjectPrefix to fn.
// Messages that fail to decode are passed to onErr and skipped.
func Subscribe(nc *nats.Conn, fn func(*Record), onErr func(error)) (*nats.Subscription, error) {
	return nc.Subscribe(SubjectPrefix+"*", func(m *nats.Msg) {
		r, err := Unmarshal(m.Data)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("calls: subject %s: %w", m.Subject, err))
			}
			return
		}
		fn(r)
	})
}
