//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"log/slog"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/errors"
	"quicktalk/moderation"
	"quicktalk/repositories"
	"quicktalk/runtime"
)

type IChatService interface {
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error)
}

// ChatService is the message path: persist first, then broadcast.
type ChatService struct {
	log         *slog.Logger
	messages    repositories.IMessageRepository
	membership  contract.IMembership
	broadcaster contract.IBroadcaster
	lanes       *runtime.Lanes
	moderator   *moderation.Moderator
}

func NewChatService(log *slog.Logger,
	messages repositories.IMessageRepository,
	membership contract.IMembership,
	broadcaster contract.IBroadcaster,
	lanes *runtime.Lanes) *ChatService {
	return &ChatService{
		log:         log,
		messages:    messages,
		membership:  membership,
		broadcaster: broadcaster,
		lanes:       lanes,
	}
}

// WithModerator masks forbidden words before messages are stored.
func (s *ChatService) WithModerator(moderator *moderation.Moderator) *ChatService {
	s.moderator = moderator
	return s
}

// PostMessage appends the message then publishes it to the chat.
// Append and publish run in the chat lane: messages of one chat reach every
// connection in the order they were stored. Nothing is published if the
// append failed.
func (s *ChatService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	if err := domain.ValidateContent(cmd.Content); err != nil {
		return domain.Message{}, err
	}

	content := cmd.Content
	if s.moderator != nil {
		var words []string
		if content, words = s.moderator.Censor(content); len(words) > 0 {
			s.log.Debug("Message censored", "chat_id", cmd.Chat, "user_id", cmd.SenderID, "words", len(words))
		}
	}

	sender := domain.Participant{ID: cmd.SenderID, Username: cmd.SenderName}
	// A stored message is published even if the poster went away meanwhile.
	publishCtx := context.WithoutCancel(ctx)

	var msg domain.Message
	var err error
	s.lanes.Do(cmd.Chat, func() {
		if msg, err = s.messages.Append(cmd.Chat, sender, content); err != nil {
			return
		}
		s.broadcaster.Publish(publishCtx, cmd.Chat, event.FromMessage(msg))
	})
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrNotFound):
			s.log.Debug("Message for a deleted chat dropped", "chat_id", cmd.Chat, "user_id", cmd.SenderID)
		case stderrors.Is(err, errors.ErrTransientStore):
			s.log.Error("Message not stored", "chat_id", cmd.Chat, "user_id", cmd.SenderID, "error", err)
		}
		return domain.Message{}, err
	}
	return msg, nil
}

// DefaultPageSize is the page length used when a cursor comes without a limit.
const DefaultPageSize = 50

// GetMessages returns the history of a chat to one of its members.
// Without a cursor nor a limit the whole history is returned.
func (s *ChatService) GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error) {
	if _, err := s.membership.Authorize(ctx, cmd.Chat, cmd.UserID); err != nil {
		return nil, err
	}
	if cmd.Before != nil && cmd.Limit <= 0 {
		cmd.Limit = DefaultPageSize
	}
	if cmd.Limit > 0 {
		return s.messages.ListBefore(cmd.Chat, cmd.Before, cmd.Limit)
	}
	return s.messages.List(cmd.Chat)
}
