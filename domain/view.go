package domain

import "time"

// ChatView is a chat as seen by one user: personal chats are named after
// the other member.
type ChatView struct {
	ID        ChatID
	Kind      ChatKind
	Name      string
	CreatedBy *UserID
	CreatedAt time.Time
	Members   []Participant
}
