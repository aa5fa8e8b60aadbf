//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"quicktalk/domain"
	"quicktalk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Append(chatID domain.ChatID, sender domain.Participant, content string) (domain.Message, error)
	List(chatID domain.ChatID) ([]domain.Message, error)
	ListBefore(chatID domain.ChatID, beforeSeq *uint64, limit int) ([]domain.Message, error)
	DeleteChatMessages(chatID domain.ChatID) (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type DiskMessage struct {
	ID         uuid.UUID `json:"id"`
	Chat       int64     `json:"chat"`
	Seq        uint64    `json:"seq"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	At         int64     `json:"at"`
}

func messagePrefix(chatID domain.ChatID) string {
	return fmt.Sprintf("msg:%d:", chatID)
}

// messageKey is formatted as "msg:{chat_id}:{seq_padded}" so that a prefix
// scan returns messages in the order they were persisted (20 digits cover uint64).
func messageKey(chatID domain.ChatID, seq uint64) string {
	return fmt.Sprintf("msg:%d:%020d", chatID, seq)
}

func messageCounterKey(chatID domain.ChatID) string {
	return fmt.Sprintf("counter:msg:%d", chatID)
}

// Append persists a message for a chat.
// The sequence number, id and timestamp are assigned inside the same transaction
// as the insert, which also checks that the chat still exists. Concurrent appends
// to one chat conflict on the chat counter and are replayed, so every committed
// message owns a distinct, increasing sequence number.
func (m MessageRepository) Append(chatID domain.ChatID, sender domain.Participant, content string) (domain.Message, error) {
	if err := domain.ValidateContent(content); err != nil {
		return domain.Message{}, err
	}
	var stored DiskMessage
	err := update(m.db, func(txn *badger.Txn) error {
		ok, err := exists(txn, chatKey(chatID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("chat %d: %w", chatID, errors.ErrNotFound)
		}
		seq, err := nextCounter(txn, messageCounterKey(chatID))
		if err != nil {
			return err
		}
		stored = DiskMessage{
			ID:         uuid.New(),
			Chat:       int64(chatID),
			Seq:        seq,
			AuthorID:   int64(sender.ID),
			AuthorName: sender.Username,
			Content:    content,
			At:         m.now().UnixNano(),
		}
		return setJSON(txn, messageKey(chatID, seq), stored)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(stored), nil
}

// List returns every message of a chat, oldest first.
func (m MessageRepository) List(chatID domain.ChatID) ([]domain.Message, error) {
	var diskMessages []DiskMessage
	err := view(m.db, func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix(chatID))
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dm DiskMessage
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			}); err != nil {
				return err
			}
			diskMessages = append(diskMessages, dm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(diskMessages, func(item DiskMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

// ListBefore returns at most limit messages persisted before beforeSeq, oldest first.
// A nil beforeSeq starts from the latest message. The scan walks the keys backwards
// from the seek position, then the page is put back in chronological order.
func (m MessageRepository) ListBefore(chatID domain.ChatID, beforeSeq *uint64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", errors.ErrValidation)
	}
	var diskMessages []DiskMessage
	err := view(m.db, func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix(chatID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch beforeSeq {
		case nil:
			// Highest possible key of the chat, iteration goes back from there
			seekKey = append(slices.Clone(prefix), []byte("99999999999999999999")...)
		default:
			seekKey = []byte(messageKey(chatID, *beforeSeq))
		}

		it.Seek(seekKey)
		if beforeSeq != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(diskMessages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			var dm DiskMessage
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			}); err != nil {
				return err
			}
			diskMessages = append(diskMessages, dm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(diskMessages)
	return lo.Map(diskMessages, func(item DiskMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

// DeleteChatMessages removes every message of a chat and its sequence counter.
// Keys are collected first then removed through a write batch, which splits
// the deletion into as many commits as needed for large histories.
func (m MessageRepository) DeleteChatMessages(chatID domain.ChatID) (int, error) {
	var keys [][]byte
	err := view(m.db, func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix(chatID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := m.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err = wb.Delete(key); err != nil {
			return 0, storeError(err)
		}
	}
	if err = wb.Delete([]byte(messageCounterKey(chatID))); err != nil {
		return 0, storeError(err)
	}
	if err = wb.Flush(); err != nil {
		return 0, storeError(err)
	}
	m.log.Debug("Chat messages deleted", "chat_id", chatID, "count", len(keys))
	return len(keys), nil
}

func toMessage(dm DiskMessage) domain.Message {
	return domain.Message{
		ID:         dm.ID,
		ChatID:     domain.ChatID(dm.Chat),
		Seq:        dm.Seq,
		SenderID:   domain.UserID(dm.AuthorID),
		SenderName: dm.AuthorName,
		Content:    dm.Content,
		CreatedAt:  time.Unix(0, dm.At).UTC(),
	}
}
