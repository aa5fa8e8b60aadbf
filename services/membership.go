package services

import (
	"context"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/repositories"
)

var _ contract.IMembership = (*MembershipService)(nil)

// MembershipService answers membership questions straight from the chat store.
// Nothing is cached: a member added a moment ago can join right away.
type MembershipService struct {
	chats repositories.IChatRepository
}

func NewMembershipService(chats repositories.IChatRepository) *MembershipService {
	return &MembershipService{chats: chats}
}

func (s *MembershipService) IsMember(_ context.Context, chatID domain.ChatID, userID domain.UserID) (bool, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return false, err
	}
	return chat.HasMember(userID), nil
}

func (s *MembershipService) MembersOf(_ context.Context, chatID domain.ChatID) ([]domain.UserID, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return nil, err
	}
	return chat.MemberIDs(), nil
}

// Authorize is the join gate of a chat: ErrNotFound for an unknown chat,
// ErrForbidden for a user outside of it.
func (s *MembershipService) Authorize(_ context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Chat, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !chat.HasMember(userID) {
		return domain.Chat{}, errors.ErrForbidden
	}
	return chat, nil
}
