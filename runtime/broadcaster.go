package runtime

import (
	"context"
	"log/slog"
	"sync"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
)

var _ contract.IBroadcaster = (*LocalBroadcaster)(nil)

type Fanout interface {
	Fanout(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int
}

// LocalBroadcaster is the single process broadcaster: subscribers live in the
// connection registry and publications are fanned out in memory.
type LocalBroadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
	fanout   Fanout
}

func NewLocalBroadcaster(log *slog.Logger, registry contract.IRegistry, fanout Fanout) *LocalBroadcaster {
	return &LocalBroadcaster{log: log, registry: registry, fanout: fanout}
}

func (b *LocalBroadcaster) Publish(ctx context.Context, chatID domain.ChatID, e event.DomainEvent) {
	delivered := b.fanout.Fanout(ctx, chatID, e)
	b.log.Debug("Event published", "chat_id", chatID, "delivered", delivered)
}

// Subscribe registers the connection on the chat. The returned function removes
// it and may be called any number of times.
func (b *LocalBroadcaster) Subscribe(chatID domain.ChatID, conn contract.Connection) func() {
	b.registry.Subscribe(chatID, conn)
	var once sync.Once
	return func() {
		once.Do(func() {
			b.registry.Unsubscribe(chatID, conn)
		})
	}
}
