package session

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/services"
	"quicktalk/sink"
)

type State int32

const (
	Connecting State = iota
	Active
	Idle
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Idle:
		return "idle"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Observer is told about the life of sessions, it may be nil.
type Observer interface {
	IncrSessionsOpened()
	IncrSessionsClosed()
	IncrFramesDropped()
	IncrSlowConsumers()
}

type Deps struct {
	Log         *slog.Logger
	Membership  contract.IMembership
	Broadcaster contract.IBroadcaster
	Chats       services.IChatService
	Observer    Observer
	BufferSize  int
}

// Session is the life of one connection on one chat:
// Connecting, then Active while a frame is handled and Idle between frames,
// then Closed. A session is never reopened.
//
// Open, HandleFrame and Close may be called from different goroutines
// (read pump, write pump, server shutdown).
type Session struct {
	log         *slog.Logger
	chatID      domain.ChatID
	participant domain.Participant
	membership  contract.IMembership
	broadcaster contract.IBroadcaster
	chats       services.IChatService
	observer    Observer
	sink        *sink.ConnectionSink

	state       atomic.Int32
	mu          sync.Mutex // guards unsubscribe against a concurrent Close
	unsubscribe func()
	closeOnce   sync.Once
}

func New(chatID domain.ChatID, participant domain.Participant, deps Deps) *Session {
	s := &Session{
		log:         deps.Log.With("chat_id", chatID, "user_id", participant.ID),
		chatID:      chatID,
		participant: participant,
		membership:  deps.Membership,
		broadcaster: deps.Broadcaster,
		chats:       deps.Chats,
		observer:    deps.Observer,
	}
	s.sink = sink.NewConnectionSink(participant.ID, deps.BufferSize).OnSlowConsumer(func() {
		s.log.Warn("Slow consumer, closing connection", "connection_id", s.sink.ID())
		if s.observer != nil {
			s.observer.IncrSlowConsumers()
		}
	})
	s.state.Store(int32(Connecting))
	return s
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Sink is the outbound queue the writer drains.
func (s *Session) Sink() *sink.ConnectionSink {
	return s.sink
}

func (s *Session) ChatID() domain.ChatID {
	return s.chatID
}

// Open checks the caller belongs to the chat, then registers the connection.
// A refused session ends Closed and is never registered: ErrNotFound for an
// unknown chat, ErrForbidden for an outsider.
func (s *Session) Open(ctx context.Context) error {
	if _, err := s.membership.Authorize(ctx, s.chatID, s.participant.ID); err != nil {
		s.log.Info("Join refused", "error", err)
		s.Close()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CompareAndSwap(int32(Connecting), int32(Active)) {
		return errors.ErrSessionClosed
	}
	s.unsubscribe = s.broadcaster.Subscribe(s.chatID, s.sink)
	s.state.Store(int32(Idle))
	if s.observer != nil {
		s.observer.IncrSessionsOpened()
	}
	s.log.Info("Joined chat", "connection_id", s.sink.ID())
	return nil
}

// HandleFrame processes one inbound frame.
// A bad frame, a deleted chat or a store failure drops the frame and keeps the
// session open, the error is returned for logging only. ErrSessionClosed means
// the reader should stop.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Active)) {
		if s.State() == Active {
			// frames of one connection are read one at a time
			s.log.Warn("Concurrent frame on a session")
		}
		return errors.ErrSessionClosed
	}
	defer s.state.CompareAndSwap(int32(Active), int32(Idle))

	content, err := ParseInbound(raw)
	if err != nil {
		s.dropped("Malformed frame dropped", err)
		return err
	}

	_, err = s.chats.PostMessage(ctx, domain.PostMessageCommand{
		Chat:       s.chatID,
		SenderID:   s.participant.ID,
		SenderName: s.participant.Username,
		Content:    content,
	})
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrValidation):
		s.dropped("Invalid message dropped", err)
	case stderrors.Is(err, errors.ErrNotFound):
		s.dropped("Message for a deleted chat dropped", err)
	default:
		s.dropped("Message not stored, dropped", err)
	}
	return err
}

func (s *Session) dropped(msg string, err error) {
	s.log.Debug(msg, "error", err)
	if s.observer != nil {
		s.observer.IncrFramesDropped()
	}
}

// Close unregisters the connection and closes its queue. Only the first
// call does anything.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		previous := State(s.state.Swap(int32(Closed)))
		unsubscribe := s.unsubscribe
		s.unsubscribe = nil
		s.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		s.sink.Close()
		if previous != Connecting && s.observer != nil {
			s.observer.IncrSessionsClosed()
		}
		s.log.Debug("Session closed", "connection_id", s.sink.ID())
	})
}
