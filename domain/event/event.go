package event

import (
	"time"

	"quicktalk/domain"

	"github.com/google/uuid"
)

type DomainEvent interface {
	ChatID() domain.ChatID
}

// MessagePosted is emitted once a message has been persisted.
// It carries everything a receiver needs to render the message.
type MessagePosted struct {
	ID       uuid.UUID
	Chat     domain.ChatID
	Seq      uint64
	AuthorID domain.UserID
	Author   string
	Content  string
	At       time.Time
}

func (m MessagePosted) ChatID() domain.ChatID {
	return m.Chat
}

func FromMessage(m domain.Message) MessagePosted {
	return MessagePosted{
		ID:       m.ID,
		Chat:     m.ChatID,
		Seq:      m.Seq,
		AuthorID: m.SenderID,
		Author:   m.SenderName,
		Content:  m.Content,
		At:       m.CreatedAt,
	}
}
