package sink

import (
	"context"
	"sync"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/errors"

	"github.com/google/uuid"
)

var _ contract.Connection = (*ConnectionSink)(nil)

// ConnectionSink is the outbound queue of one websocket connection.
// Consume is called by the fanout and never blocks: events are queued in
// order and picked up by the connection writer through Events.
// When the queue is full the consumer is considered too slow, the sink closes
// itself and the writer tears the connection down.
//
// The events channel is never closed, Done tells the writer to stop.
type ConnectionSink struct {
	id     string
	userID domain.UserID

	events    chan event.DomainEvent
	done      chan struct{}
	closeOnce sync.Once
	cause     error
	onSlow    func()
}

func NewConnectionSink(userID domain.UserID, bufferSize int) *ConnectionSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ConnectionSink{
		id:     uuid.NewString(),
		userID: userID,
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// OnSlowConsumer registers a callback run once when the queue overflows.
func (s *ConnectionSink) OnSlowConsumer(fn func()) *ConnectionSink {
	s.onSlow = fn
	return s
}

func (s *ConnectionSink) ID() string {
	return s.id
}

func (s *ConnectionSink) UserID() domain.UserID {
	return s.userID
}

func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.closeWith(errors.ErrSlowConsumer)
		return errors.ErrSlowConsumer
	}
}

// Events is read by the connection writer.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Done is closed once the sink stopped accepting events.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

// Err returns why the sink was closed, nil for a regular close.
func (s *ConnectionSink) Err() error {
	select {
	case <-s.done:
		return s.cause
	default:
		return nil
	}
}

func (s *ConnectionSink) Close() {
	s.closeWith(nil)
}

func (s *ConnectionSink) closeWith(cause error) {
	s.closeOnce.Do(func() {
		s.cause = cause
		close(s.done)
		if cause != nil && s.onSlow != nil {
			s.onSlow()
		}
	})
}
