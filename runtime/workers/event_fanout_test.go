package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/errors"
	"quicktalk/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockConnection(ctrl *gomock.Controller, id string) *mocks.MockConnection {
	conn := mocks.NewMockConnection(ctrl)
	conn.EXPECT().ID().Return(id).AnyTimes()
	conn.EXPECT().UserID().Return(domain.UserID(1)).AnyTimes()
	return conn
}

func TestEventFanout_Delivers_To_Every_Connection(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	sender := newMockConnection(ctrl, "sender")
	other := newMockConnection(ctrl, "other")
	evt := event.MessagePosted{Chat: 1, Seq: 1, Content: "hello"}

	fanout := NewEventFanout(log, mockRegistry, nil, time.Second)

	// Given two connections on the chat, the sender included
	mockRegistry.EXPECT().GetConnections(domain.ChatID(1)).
		Return([]contract.Connection{sender, other}).Times(1)
	// Then both receive the event
	sender.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	other.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	// When the event is fanned out
	delivered := fanout.Fanout(context.Background(), 1, evt)

	req.Equal(2, delivered)
}

func TestEventFanout_Failing_Connection_Does_Not_Affect_Others(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slow := newMockConnection(ctrl, "slow")
	broken := newMockConnection(ctrl, "broken")
	healthy := newMockConnection(ctrl, "healthy")
	evt := event.MessagePosted{Chat: 1, Seq: 2, Content: "hello"}

	fanout := NewEventFanout(log, mockRegistry, nil, time.Second)

	mockRegistry.EXPECT().GetConnections(domain.ChatID(1)).
		Return([]contract.Connection{slow, broken, healthy}).Times(1)
	// Given one slow consumer and one panicking connection
	slow.EXPECT().Consume(gomock.Any(), evt).Return(errors.ErrSlowConsumer).Times(1)
	broken.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, e event.DomainEvent) error {
			panic("boom")
		}).Times(1)
	// Then the healthy one still receives the event
	healthy.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	delivered := fanout.Fanout(context.Background(), 1, evt)

	req.Equal(1, delivered)
}

func TestEventFanout_Empty_Chat(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	fanout := NewEventFanout(log, mockRegistry, nil, time.Second)

	// Given nobody is connected
	mockRegistry.EXPECT().GetConnections(domain.ChatID(9)).Return(nil).Times(1)

	// When an event is fanned out
	delivered := fanout.Fanout(context.Background(), 9, event.MessagePosted{Chat: 9})

	// Then nothing is delivered and nothing fails
	req.Zero(delivered)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	stuck := newMockConnection(ctrl, "stuck")
	evt := event.MessagePosted{Chat: 1}

	fanout := NewEventFanout(log, mockRegistry, nil, 20*time.Millisecond)

	mockRegistry.EXPECT().GetConnections(domain.ChatID(1)).
		Return([]contract.Connection{stuck}).Times(1)
	// Given a connection that waits for its context
	stuck.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, e event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)

	start := time.Now()
	delivered := fanout.Fanout(context.Background(), 1, evt)

	// Then the fanout gives up once the timeout is reached
	req.Zero(delivered)
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_Permanent_Sinks_Receive_Telemetry(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	permanent := mocks.NewMockEventSink(ctrl)
	telemetry := make(chan event.DomainEvent, 10)
	evt := event.MessagePosted{Chat: 4, Seq: 1}

	fanout := NewEventFanout(log, mockRegistry, telemetry, time.Second, permanent)

	mockRegistry.EXPECT().GetConnections(domain.ChatID(4)).Return(nil).Times(1)

	done := make(chan struct{})
	// Then the permanent sink gets the event, even with nobody connected
	permanent.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, e event.DomainEvent) error {
			close(done)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = fanout.Run(ctx)
	}()

	// When an event is fanned out
	fanout.Fanout(context.Background(), 4, evt)

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Permanent sink was not consumed in time")
	}
}
