package domain

type Command interface {
	ChatID() ChatID
}

type PostMessageCommand struct {
	Chat       ChatID
	SenderID   UserID
	SenderName string
	Content    string
}

func (p PostMessageCommand) ChatID() ChatID {
	return p.Chat
}

// GetMessagesCommand reads the history of a chat.
// A zero Limit returns the whole history, otherwise the Limit messages
// preceding Before (or the latest ones when Before is nil).
type GetMessagesCommand struct {
	Chat   ChatID
	UserID UserID
	Before *uint64
	Limit  int
}

func (p GetMessagesCommand) ChatID() ChatID {
	return p.Chat
}
