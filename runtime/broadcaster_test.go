package runtime

import (
	"context"
	"log/slog"
	"testing"

	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fanoutFunc func(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int

func (f fanoutFunc) Fanout(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int {
	return f(ctx, chatID, evt)
}

func TestLocalBroadcaster_Subscribe_And_Unsubscribe(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	conn := newConnection(1)
	broadcaster := NewLocalBroadcaster(log, mockRegistry, fanoutFunc(
		func(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int { return 0 }))

	// Given the registry is updated once on each side
	mockRegistry.EXPECT().Subscribe(domain.ChatID(3), conn).Times(1)
	mockRegistry.EXPECT().Unsubscribe(domain.ChatID(3), conn).Times(1)

	// When the connection subscribes and leaves twice
	unsubscribe := broadcaster.Subscribe(3, conn)
	req.NotNil(unsubscribe)
	unsubscribe()
	unsubscribe()
}

func TestLocalBroadcaster_Publish_Fans_Out_On_The_Chat(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry()

	var gotChat domain.ChatID
	var gotEvent event.DomainEvent
	broadcaster := NewLocalBroadcaster(log, registry, fanoutFunc(
		func(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent) int {
			gotChat = chatID
			gotEvent = evt
			return 1
		}))

	evt := event.MessagePosted{Chat: 5, Seq: 1, Content: "hi"}

	// When an event is published
	broadcaster.Publish(context.Background(), 5, evt)

	// Then the fanout receives it for the same chat
	req.Equal(domain.ChatID(5), gotChat)
	req.Equal(evt, gotEvent)
}
