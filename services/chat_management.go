//go:generate go run go.uber.org/mock/mockgen -source=chat_management.go -destination=../mocks/mock_chat_management.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/repositories"
	"quicktalk/runtime"

	"github.com/samber/lo"
)

const searchLimit = 50

type IChatManagementService interface {
	CreatePersonal(ctx context.Context, requester, other domain.UserID) (domain.ChatView, error)
	CreateGroup(ctx context.Context, requester domain.UserID, name string) (domain.ChatView, error)
	Rename(ctx context.Context, requester domain.UserID, chatID domain.ChatID, name string) (domain.ChatView, error)
	Join(ctx context.Context, requester domain.UserID, chatID domain.ChatID) (domain.ChatView, error)
	Delete(ctx context.Context, requester domain.UserID, chatID domain.ChatID) error
	Get(ctx context.Context, requester domain.UserID, chatID domain.ChatID) (domain.ChatView, error)
	ListForUser(ctx context.Context, requester domain.UserID) ([]domain.ChatView, error)
	Search(ctx context.Context, requester domain.UserID, query string) ([]domain.ChatView, error)
}

// ChatManagementService owns the lifecycle of chats: creation, membership,
// renaming and deletion with its messages. Group names are kept in the
// search index, an index failure is logged and never fails the request.
type ChatManagementService struct {
	log      *slog.Logger
	chats    repositories.IChatRepository
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	index    repositories.IChatIndex
	lanes    *runtime.Lanes
}

func NewChatManagementService(log *slog.Logger,
	chats repositories.IChatRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	index repositories.IChatIndex,
	lanes *runtime.Lanes) *ChatManagementService {
	return &ChatManagementService{
		log:      log,
		chats:    chats,
		messages: messages,
		users:    users,
		index:    index,
		lanes:    lanes,
	}
}

func (s *ChatManagementService) CreatePersonal(_ context.Context, requester, other domain.UserID) (domain.ChatView, error) {
	if requester == other {
		return domain.ChatView{}, errors.ErrSelfChat
	}
	if _, err := s.users.GetUserByID(other); err != nil {
		return domain.ChatView{}, err
	}
	chat, err := s.chats.CreatePersonal(requester, other)
	if err != nil {
		return domain.ChatView{}, err
	}
	s.log.Info("Personal chat created", "chat_id", chat.ID, "user_id", requester, "other_id", other)
	return s.view(chat, requester)
}

func (s *ChatManagementService) CreateGroup(_ context.Context, requester domain.UserID, name string) (domain.ChatView, error) {
	chat, err := s.chats.CreateGroup(requester, name)
	if err != nil {
		return domain.ChatView{}, err
	}
	s.reindex(chat)
	s.log.Info("Group chat created", "chat_id", chat.ID, "user_id", requester)
	return s.view(chat, requester)
}

// Rename is reserved to the creator of a group chat.
func (s *ChatManagementService) Rename(_ context.Context, requester domain.UserID, chatID domain.ChatID, name string) (domain.ChatView, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return domain.ChatView{}, err
	}
	if chat.Kind != domain.Group {
		return domain.ChatView{}, errors.ErrNotGroupChat
	}
	if !chat.CanManage(requester) {
		return domain.ChatView{}, errors.ErrNotChatOwner
	}
	if chat, err = s.chats.Rename(chatID, name); err != nil {
		return domain.ChatView{}, err
	}
	s.reindex(chat)
	return s.view(chat, requester)
}

func (s *ChatManagementService) Join(_ context.Context, requester domain.UserID, chatID domain.ChatID) (domain.ChatView, error) {
	chat, err := s.chats.AddMember(chatID, requester)
	if err != nil {
		return domain.ChatView{}, err
	}
	s.log.Info("User joined group chat", "chat_id", chatID, "user_id", requester)
	return s.view(chat, requester)
}

// Delete removes the messages then the chat.
// It holds the chat lane so no message is being stored meanwhile, any later
// append fails with ErrNotFound. A failure leaves the chat in place and the
// deletion can be retried.
func (s *ChatManagementService) Delete(_ context.Context, requester domain.UserID, chatID domain.ChatID) error {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return err
	}
	if !chat.CanManage(requester) {
		if chat.Kind == domain.Personal {
			return errors.ErrForbidden
		}
		return errors.ErrNotChatOwner
	}

	var deleted int
	s.lanes.Do(chatID, func() {
		if deleted, err = s.messages.DeleteChatMessages(chatID); err != nil {
			return
		}
		_, err = s.chats.DeleteChat(chatID)
	})
	if err != nil {
		s.log.Error("Chat not deleted", "chat_id", chatID, "messages", deleted, "error", err)
		return err
	}

	if chat.Kind == domain.Group {
		if err = s.index.Remove(chatID); err != nil {
			s.log.Warn("Search index not updated", "chat_id", chatID, "error", err)
		}
	}
	s.log.Info("Chat deleted", "chat_id", chatID, "user_id", requester, "messages", deleted)
	return nil
}

// Get returns a group chat to anyone (it can be found by search) and a
// personal chat to its members only.
func (s *ChatManagementService) Get(_ context.Context, requester domain.UserID, chatID domain.ChatID) (domain.ChatView, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return domain.ChatView{}, err
	}
	if chat.Kind == domain.Personal && !chat.HasMember(requester) {
		return domain.ChatView{}, errors.ErrForbidden
	}
	return s.view(chat, requester)
}

func (s *ChatManagementService) ListForUser(_ context.Context, requester domain.UserID) ([]domain.ChatView, error) {
	chats, err := s.chats.ListForUser(requester)
	if err != nil {
		return nil, err
	}
	return s.views(chats, requester)
}

// Search matches group chat names, case insensitive. An empty query finds nothing.
func (s *ChatManagementService) Search(ctx context.Context, requester domain.UserID, query string) ([]domain.ChatView, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.ChatView{}, nil
	}
	ids, err := s.index.SearchGroups(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	chats := make([]domain.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := s.chats.GetChat(id)
		if stderrors.Is(err, errors.ErrNotFound) {
			s.log.Debug("Stale search hit", "chat_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return s.views(chats, requester)
}

func (s *ChatManagementService) reindex(chat domain.Chat) {
	if err := s.index.Index(chat); err != nil {
		s.log.Warn("Search index not updated", "chat_id", chat.ID, "error", err)
	}
}

func (s *ChatManagementService) views(chats []domain.Chat, viewer domain.UserID) ([]domain.ChatView, error) {
	out := make([]domain.ChatView, 0, len(chats))
	for _, chat := range chats {
		v, err := s.view(chat, viewer)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// view resolves member usernames and names a personal chat after the
// other member.
func (s *ChatManagementService) view(chat domain.Chat, viewer domain.UserID) (domain.ChatView, error) {
	members := make([]domain.Participant, 0, len(chat.Members))
	for _, id := range chat.MemberIDs() {
		user, err := s.users.GetUserByID(id)
		if stderrors.Is(err, errors.ErrNotFound) {
			members = append(members, domain.Participant{ID: id})
			continue
		}
		if err != nil {
			return domain.ChatView{}, err
		}
		members = append(members, domain.Participant{ID: user.ID, Username: user.Username})
	}

	name := chat.Name
	if counterpart, ok := chat.Counterpart(viewer); ok {
		if p, found := lo.Find(members, func(p domain.Participant) bool { return p.ID == counterpart }); found {
			name = p.Username
		}
	}
	return domain.ChatView{
		ID:        chat.ID,
		Kind:      chat.Kind,
		Name:      name,
		CreatedBy: chat.CreatedBy,
		CreatedAt: chat.CreatedAt,
		Members:   members,
	}, nil
}
