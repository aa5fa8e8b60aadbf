package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"quicktalk/contract"
	"quicktalk/domain"
	"quicktalk/domain/event"
	"quicktalk/errors"
	"quicktalk/mocks"
	"quicktalk/moderation"
	"quicktalk/repositories"
	"quicktalk/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestChatService_PostMessage_Persists_Then_Publishes(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mocks.NewMockIMessageRepository(ctrl)
	mockMembership := mocks.NewMockIMembership(ctrl)
	mockBroadcaster := mocks.NewMockIBroadcaster(ctrl)
	svc := NewChatService(log, mockMessages, mockMembership, mockBroadcaster, runtime.NewLanes())

	stored := domain.Message{
		ID:         uuid.New(),
		ChatID:     1,
		Seq:        7,
		SenderID:   2,
		SenderName: "bob",
		Content:    "hello",
		CreatedAt:  time.Now().UTC(),
	}

	// Given the message is stored first, then published as stored
	gomock.InOrder(
		mockMessages.EXPECT().
			Append(domain.ChatID(1), domain.Participant{ID: 2, Username: "bob"}, "hello").
			Return(stored, nil).Times(1),
		mockBroadcaster.EXPECT().
			Publish(gomock.Any(), domain.ChatID(1), event.FromMessage(stored)).Times(1),
	)

	// When a message is posted
	msg, err := svc.PostMessage(context.Background(), domain.PostMessageCommand{
		Chat: 1, SenderID: 2, SenderName: "bob", Content: "hello",
	})

	// Then the stored message is returned
	req.NoError(err)
	req.Equal(stored, msg)
}

func TestChatService_PostMessage_Nothing_Published_On_Failure(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	tests := []struct {
		name      string
		content   string
		appendErr error
		wantErr   error
	}{
		{name: "empty content", content: "", wantErr: errors.ErrEmptyContent},
		{name: "whitespace content", content: " \n\t ", wantErr: errors.ErrValidation},
		{name: "chat deleted meanwhile", content: "hi", appendErr: errors.ErrNotFound, wantErr: errors.ErrNotFound},
		{name: "store unavailable", content: "hi", appendErr: errors.ErrTransientStore, wantErr: errors.ErrTransientStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockMessages := mocks.NewMockIMessageRepository(ctrl)
			mockBroadcaster := mocks.NewMockIBroadcaster(ctrl)
			svc := NewChatService(log, mockMessages, mocks.NewMockIMembership(ctrl), mockBroadcaster, runtime.NewLanes())

			if tt.appendErr != nil {
				mockMessages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(domain.Message{}, tt.appendErr).Times(1)
			} else {
				mockMessages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			}
			// Then nothing is ever broadcast
			mockBroadcaster.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.PostMessage(context.Background(), domain.PostMessageCommand{
				Chat: 1, SenderID: 2, SenderName: "bob", Content: tt.content,
			})

			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestChatService_PostMessage_Censors_Content(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	req.NoError(err)

	mockMessages := mocks.NewMockIMessageRepository(ctrl)
	mockBroadcaster := mocks.NewMockIBroadcaster(ctrl)
	svc := NewChatService(log, mockMessages, mocks.NewMockIMembership(ctrl), mockBroadcaster, runtime.NewLanes()).
		WithModerator(moderator)

	// Then the censored content is stored
	mockMessages.EXPECT().Append(domain.ChatID(1), gomock.Any(), "a ****** here").
		Return(domain.Message{ChatID: 1, Seq: 1, Content: "a ****** here"}, nil).Times(1)
	mockBroadcaster.EXPECT().Publish(gomock.Any(), domain.ChatID(1), gomock.Any()).Times(1)

	_, err = svc.PostMessage(context.Background(), domain.PostMessageCommand{
		Chat: 1, SenderID: 2, SenderName: "bob", Content: "a badger here",
	})
	req.NoError(err)
}

func TestChatService_GetMessages(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mocks.NewMockIMessageRepository(ctrl)
	mockMembership := mocks.NewMockIMembership(ctrl)
	svc := NewChatService(log, mockMessages, mockMembership, mocks.NewMockIBroadcaster(ctrl), runtime.NewLanes())
	ctx := context.Background()
	history := []domain.Message{{ChatID: 1, Seq: 1}, {ChatID: 1, Seq: 2}}

	t.Run("should return the whole history to a member", func(t *testing.T) {
		req := require.New(t)
		mockMembership.EXPECT().Authorize(gomock.Any(), domain.ChatID(1), domain.UserID(2)).
			Return(domain.Chat{ID: 1}, nil).Times(1)
		mockMessages.EXPECT().List(domain.ChatID(1)).Return(history, nil).Times(1)

		messages, err := svc.GetMessages(ctx, domain.GetMessagesCommand{Chat: 1, UserID: 2})

		req.NoError(err)
		req.Equal(history, messages)
	})

	t.Run("should return a page when a limit is given", func(t *testing.T) {
		req := require.New(t)
		before := uint64(3)
		mockMembership.EXPECT().Authorize(gomock.Any(), domain.ChatID(1), domain.UserID(2)).
			Return(domain.Chat{ID: 1}, nil).Times(1)
		mockMessages.EXPECT().ListBefore(domain.ChatID(1), &before, 2).Return(history, nil).Times(1)

		messages, err := svc.GetMessages(ctx, domain.GetMessagesCommand{Chat: 1, UserID: 2, Before: &before, Limit: 2})

		req.NoError(err)
		req.Len(messages, 2)
	})

	t.Run("should page with the default size when only a cursor is given", func(t *testing.T) {
		req := require.New(t)
		before := uint64(3)
		mockMembership.EXPECT().Authorize(gomock.Any(), domain.ChatID(1), domain.UserID(2)).
			Return(domain.Chat{ID: 1}, nil).Times(1)
		mockMessages.EXPECT().ListBefore(domain.ChatID(1), &before, DefaultPageSize).Return(history, nil).Times(1)
		mockMessages.EXPECT().List(gomock.Any()).Times(0)

		messages, err := svc.GetMessages(ctx, domain.GetMessagesCommand{Chat: 1, UserID: 2, Before: &before})

		req.NoError(err)
		req.Len(messages, 2)
	})

	t.Run("should refuse a non member", func(t *testing.T) {
		req := require.New(t)
		mockMembership.EXPECT().Authorize(gomock.Any(), domain.ChatID(1), domain.UserID(9)).
			Return(domain.Chat{}, errors.ErrForbidden).Times(1)
		mockMessages.EXPECT().List(gomock.Any()).Times(0)

		_, err := svc.GetMessages(ctx, domain.GetMessagesCommand{Chat: 1, UserID: 9})

		req.ErrorIs(err, errors.ErrForbidden)
	})
}

func TestChatService_GetMessages_Cursor_Without_Limit(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db := openTestDB(t)
	chats := repositories.NewChatRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	svc := NewChatService(log, messages, NewMembershipService(chats), &recordingBroadcaster{seqs: map[domain.ChatID][]uint64{}}, runtime.NewLanes())
	ctx := context.Background()

	// Given a chat holding four messages
	chat, err := chats.CreateGroup(1, "gophers")
	req.NoError(err)
	for _, content := range []string{"a", "b", "c", "d"} {
		_, err = svc.PostMessage(ctx, domain.PostMessageCommand{Chat: chat.ID, SenderID: 1, SenderName: "alice", Content: content})
		req.NoError(err)
	}

	// When the history before the second message is read without a limit
	before := uint64(2)
	page, err := svc.GetMessages(ctx, domain.GetMessagesCommand{Chat: chat.ID, UserID: 1, Before: &before})

	// Then only the first message is returned
	req.NoError(err)
	req.Len(page, 1)
	req.Equal("a", page[0].Content)
}

// recordingBroadcaster keeps the published sequence numbers per chat.
type recordingBroadcaster struct {
	mu   sync.Mutex
	seqs map[domain.ChatID][]uint64
}

func (r *recordingBroadcaster) Publish(_ context.Context, chatID domain.ChatID, e event.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[chatID] = append(r.seqs[chatID], e.(event.MessagePosted).Seq)
}

func (r *recordingBroadcaster) Subscribe(domain.ChatID, contract.Connection) func() {
	return func() {}
}

func TestChatService_Concurrent_Posts_Are_Published_In_Stored_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db := openTestDB(t)
	chats := repositories.NewChatRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	broadcaster := &recordingBroadcaster{seqs: map[domain.ChatID][]uint64{}}
	svc := NewChatService(log, messages, NewMembershipService(chats), broadcaster, runtime.NewLanes())

	first, err := chats.CreateGroup(1, "first group")
	req.NoError(err)
	second, err := chats.CreateGroup(1, "second group")
	req.NoError(err)

	const senders = 4
	const perSender = 10
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		for _, chat := range []domain.Chat{first, second} {
			wg.Add(1)
			go func(s int, chatID domain.ChatID) {
				defer wg.Done()
				for i := 0; i < perSender; i++ {
					_, err := svc.PostMessage(context.Background(), domain.PostMessageCommand{
						Chat: chatID, SenderID: 1, SenderName: "alice", Content: fmt.Sprintf("%d-%d", s, i),
					})
					if err != nil {
						t.Errorf("post failed: %v", err)
					}
				}
			}(s, chat.ID)
		}
	}
	wg.Wait()

	// Then each chat was published in exactly the stored order
	for _, chat := range []domain.Chat{first, second} {
		stored, err := messages.List(chat.ID)
		req.NoError(err)
		req.Len(stored, senders*perSender)

		expected := make([]uint64, 0, len(stored))
		for _, m := range stored {
			expected = append(expected, m.Seq)
		}
		req.Equal(expected, broadcaster.seqs[chat.ID])
	}
}
