package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/errors"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout delivers an event to every live connection of a chat.
//
// Delivery is best-effort and per connection: a connection that fails or
// cannot keep up is skipped and left to its own teardown, the other
// connections still receive the event. Connections are served in the caller's
// goroutine, so two events fanned out one after the other reach each connection
// in that order.
//
// Permanent sinks (observability) receive a copy of every event through the
// telemetry channel, drained by Run. They never slow down the live delivery.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	sinks          []contract.EventSink
	telemetryEvent chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	telemetryEvent chan event.DomainEvent, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		sinks:          sinks,
		telemetryEvent: telemetryEvent,
		sinkTimeout:    sinkTimeout,
	}
}

// Fanout pushes the event to the connections registered for chatID at call time,
// the sender's own connection included. It returns how many connections accepted it.
func (w *EventFanout) Fanout(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int {
	delivered := 0
	for _, conn := range w.registry.GetConnections(chatID) {
		if err := w.consume(ctx, conn, evt); err != nil {
			w.log.Warn("Delivery failed, connection skipped",
				"chat_id", chatID,
				"connection_id", conn.ID(),
				"user_id", conn.UserID(),
				"error", err)
			continue
		}
		delivered++
	}

	if w.telemetryEvent == nil {
		return delivered
	}
	select {
	case w.telemetryEvent <- evt:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
	return delivered
}

// consume isolates one delivery: a panicking or slow sink only fails itself.
func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: sink panic: %v", errors.ErrTransport, r)
		}
	}()
	if w.sinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.sinkTimeout)
		defer cancel()
	}
	return sink.Consume(ctx, evt)
}

// Run drains the telemetry channel into the permanent sinks.
func (w *EventFanout) Run(ctx context.Context) error {
	if w.telemetryEvent == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case evt := <-w.telemetryEvent:
			for _, sink := range w.sinks {
				if err := w.consume(ctx, sink, evt); err != nil {
					w.log.Debug("Permanent sink failed", "error", err)
				}
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry fanout")
			return nil
		}
	}
}
