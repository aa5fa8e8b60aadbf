//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"quicktalk/domain"
	"quicktalk/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the events pushed by the fan-out.
// Consume must not block: a sink that cannot keep up reports an error
// and takes care of its own teardown.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Connection is one live subscriber of a chat.
// The registry only references it, the owning session decides its lifetime.
type Connection interface {
	EventSink
	ID() string
	UserID() domain.UserID
}

type IRegistry interface {
	GetConnections(chatID domain.ChatID) []Connection
	Subscribe(chatID domain.ChatID, conn Connection)
	Unsubscribe(chatID domain.ChatID, conn Connection)
	Count() int
	CountForChat(chatID domain.ChatID) int
}

// IBroadcaster delivers events published on a chat to its subscribers.
// A single process implementation keeps subscribers in memory, a distributed
// one can relay the same calls through an external pub/sub transport.
type IBroadcaster interface {
	Publish(ctx context.Context, chatID domain.ChatID, e event.DomainEvent)
	Subscribe(chatID domain.ChatID, conn Connection) (unsubscribe func())
}

type IMembership interface {
	IsMember(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (bool, error)
	MembersOf(ctx context.Context, chatID domain.ChatID) ([]domain.UserID, error)
	Authorize(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Chat, error)
}
