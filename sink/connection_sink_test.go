package sink

import (
	"context"
	"testing"

	"quicktalk/domain/event"
	"quicktalk/errors"

	"github.com/stretchr/testify/require"
)

func posted(seq uint64) event.DomainEvent {
	return event.MessagePosted{Chat: 1, Seq: seq, Content: "hi"}
}

func TestConnectionSink_Queues_Events_In_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewConnectionSink(1, 3)

	for seq := uint64(1); seq <= 3; seq++ {
		req.NoError(s.Consume(ctx, posted(seq)))
	}

	for seq := uint64(1); seq <= 3; seq++ {
		e := <-s.Events()
		req.Equal(seq, e.(event.MessagePosted).Seq)
	}
	req.NoError(s.Err())
}

func TestConnectionSink_Closes_Itself_When_Full(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	slow := 0
	s := NewConnectionSink(1, 1).OnSlowConsumer(func() { slow++ })

	// Given a queue already holding one event
	req.NoError(s.Consume(ctx, posted(1)))

	// When another event arrives
	err := s.Consume(ctx, posted(2))

	// Then the sink is closed as a slow consumer, once
	req.ErrorIs(err, errors.ErrSlowConsumer)
	req.ErrorIs(s.Err(), errors.ErrSlowConsumer)
	req.ErrorIs(s.Consume(ctx, posted(3)), errors.ErrSessionClosed)
	req.Equal(1, slow)
	select {
	case <-s.Done():
	default:
		req.Fail("sink should be done")
	}
}

func TestConnectionSink_Close(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(7, 0)
	req.Equal(7, int(s.UserID()))
	req.NotEmpty(s.ID())

	s.Close()
	s.Close()

	req.NoError(s.Err())
	req.ErrorIs(s.Consume(context.Background(), posted(1)), errors.ErrSessionClosed)
}

func TestConnectionSink_Ids_Are_Unique(t *testing.T) {
	req := require.New(t)
	req.NotEqual(NewConnectionSink(1, 1).ID(), NewConnectionSink(1, 1).ID())
}
