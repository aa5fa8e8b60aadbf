package api

import (
	"quicktalk/domain"
	"quicktalk/session"

	"github.com/samber/lo"
)

type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserSearchRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// UserResponse is the public view of an account, the phone number stays private.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	JoinedAt string `json:"joined_at"`
}

type PersonalChatRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type GroupChatRequest struct {
	Name string `json:"name" validate:"required"`
}

type MemberResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ChatResponse struct {
	ID        int64            `json:"id"`
	Kind      string           `json:"kind"`
	Name      string           `json:"name"`
	CreatedBy *int64           `json:"created_by"`
	CreatedAt string           `json:"created_at"`
	Members   []MemberResponse `json:"members"`
}

type MessageResponse struct {
	ID        string `json:"id"`
	Seq       uint64 `json:"seq"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:       int64(user.ID),
		Username: user.Username,
		JoinedAt: session.FormatTimestamp(user.JoinedAt),
	}
}

func toChatResponse(view domain.ChatView) ChatResponse {
	var createdBy *int64
	if view.CreatedBy != nil {
		id := int64(*view.CreatedBy)
		createdBy = &id
	}
	return ChatResponse{
		ID:        int64(view.ID),
		Kind:      string(view.Kind),
		Name:      view.Name,
		CreatedBy: createdBy,
		CreatedAt: session.FormatTimestamp(view.CreatedAt),
		Members: lo.Map(view.Members, func(p domain.Participant, _ int) MemberResponse {
			return MemberResponse{ID: int64(p.ID), Username: p.Username}
		}),
	}
}

func toChatResponses(views []domain.ChatView) []ChatResponse {
	return lo.Map(views, func(v domain.ChatView, _ int) ChatResponse {
		return toChatResponse(v)
	})
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:        m.ID.String(),
			Seq:       m.Seq,
			UserID:    int64(m.SenderID),
			Username:  m.SenderName,
			Message:   m.Content,
			Timestamp: session.FormatTimestamp(m.CreatedAt),
		}
	})
}
