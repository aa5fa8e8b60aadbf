//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"quicktalk/domain"
	"quicktalk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IChatRepository interface {
	CreatePersonal(first, second domain.UserID) (domain.Chat, error)
	CreateGroup(creator domain.UserID, name string) (domain.Chat, error)
	GetChat(chatID domain.ChatID) (domain.Chat, error)
	AddMember(chatID domain.ChatID, userID domain.UserID) (domain.Chat, error)
	Rename(chatID domain.ChatID, name string) (domain.Chat, error)
	DeleteChat(chatID domain.ChatID) (domain.Chat, error)
	ListForUser(userID domain.UserID) ([]domain.Chat, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewChatRepository(db *badger.DB, log *slog.Logger) ChatRepository {
	return ChatRepository{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

const chatCounterKey = "counter:chat"

type DiskChat struct {
	ID        int64   `json:"id"`
	Kind      string  `json:"kind"`
	Name      string  `json:"name,omitempty"`
	CreatedBy *int64  `json:"created_by,omitempty"`
	CreatedAt int64   `json:"created_at"`
	Members   []int64 `json:"members"`
}

func chatKey(chatID domain.ChatID) string {
	return fmt.Sprintf("chat:%d", chatID)
}

// memberKey indexes the chats of a user: "member:{user_id}:{chat_id}".
func memberKey(userID domain.UserID, chatID domain.ChatID) string {
	return fmt.Sprintf("member:%d:%d", userID, chatID)
}

// pairKey guarantees a single personal chat per unordered pair of users.
func pairKey(first, second domain.UserID) string {
	return "pair:" + domain.PairKey(first, second)
}

// CreatePersonal stores a personal chat between two users.
// The pair index is checked and written in the same transaction as the chat,
// two concurrent requests for the same pair conflict and only one survives.
func (r ChatRepository) CreatePersonal(first, second domain.UserID) (domain.Chat, error) {
	chat := domain.NewPersonalChat(first, second, r.now())
	if err := chat.Validate(); err != nil {
		return domain.Chat{}, err
	}
	err := update(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, pairKey(first, second))
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrPersonalChatExists
		}
		if chat.ID, err = r.insert(txn, chat); err != nil {
			return err
		}
		return txn.Set([]byte(pairKey(first, second)), []byte(strconv.FormatInt(int64(chat.ID), 10)))
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (r ChatRepository) CreateGroup(creator domain.UserID, name string) (domain.Chat, error) {
	chat := domain.NewGroupChat(creator, name, r.now())
	if err := chat.Validate(); err != nil {
		return domain.Chat{}, err
	}
	err := update(r.db, func(txn *badger.Txn) (err error) {
		chat.ID, err = r.insert(txn, chat)
		return err
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (r ChatRepository) insert(txn *badger.Txn, chat domain.Chat) (domain.ChatID, error) {
	id, err := nextCounter(txn, chatCounterKey)
	if err != nil {
		return 0, err
	}
	chat.ID = domain.ChatID(id)
	if err = setJSON(txn, chatKey(chat.ID), fromChat(chat)); err != nil {
		return 0, err
	}
	for memberID := range chat.Members {
		if err = txn.Set([]byte(memberKey(memberID, chat.ID)), nil); err != nil {
			return 0, err
		}
	}
	return chat.ID, nil
}

func (r ChatRepository) GetChat(chatID domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := view(r.db, func(txn *badger.Txn) (err error) {
		chat, err = getChat(txn, chatID)
		return err
	})
	return chat, err
}

// AddMember adds a user to a group chat.
func (r ChatRepository) AddMember(chatID domain.ChatID, userID domain.UserID) (domain.Chat, error) {
	var chat domain.Chat
	err := update(r.db, func(txn *badger.Txn) (err error) {
		if chat, err = getChat(txn, chatID); err != nil {
			return err
		}
		if chat.Kind != domain.Group {
			return errors.ErrNotGroupChat
		}
		if chat.HasMember(userID) {
			return errors.ErrAlreadyMember
		}
		chat.Members[userID] = struct{}{}
		if err = setJSON(txn, chatKey(chatID), fromChat(chat)); err != nil {
			return err
		}
		return txn.Set([]byte(memberKey(userID, chatID)), nil)
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (r ChatRepository) Rename(chatID domain.ChatID, name string) (domain.Chat, error) {
	var chat domain.Chat
	err := update(r.db, func(txn *badger.Txn) (err error) {
		if chat, err = getChat(txn, chatID); err != nil {
			return err
		}
		if chat.Kind != domain.Group {
			return errors.ErrNotGroupChat
		}
		chat.Name = strings.TrimSpace(name)
		if err = chat.Validate(); err != nil {
			return err
		}
		return setJSON(txn, chatKey(chatID), fromChat(chat))
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// DeleteChat removes the chat with its member and pair indexes.
// Messages are removed separately by the message repository: once the chat key
// is gone no new message can be appended to it.
func (r ChatRepository) DeleteChat(chatID domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := update(r.db, func(txn *badger.Txn) (err error) {
		if chat, err = getChat(txn, chatID); err != nil {
			return err
		}
		for memberID := range chat.Members {
			if err = txn.Delete([]byte(memberKey(memberID, chatID))); err != nil {
				return err
			}
		}
		if chat.Kind == domain.Personal {
			ids := chat.MemberIDs()
			if err = txn.Delete([]byte(pairKey(ids[0], ids[1]))); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(chatKey(chatID)))
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// ListForUser returns the chats a user belongs to, newest first.
func (r ChatRepository) ListForUser(userID domain.UserID) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := view(r.db, func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("member:%d:", userID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		var ids []domain.ChatID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				r.log.Warn("Skipping malformed member key", "key", string(it.Item().Key()))
				continue
			}
			ids = append(ids, domain.ChatID(id))
		}
		for _, id := range ids {
			chat, err := getChat(txn, id)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(chats, func(a, b domain.Chat) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return chats, nil
}

func getChat(txn *badger.Txn, chatID domain.ChatID) (domain.Chat, error) {
	var dc DiskChat
	if err := getJSON(txn, chatKey(chatID), &dc); err != nil {
		return domain.Chat{}, fmt.Errorf("chat %d: %w", chatID, err)
	}
	return toChat(dc), nil
}

func fromChat(chat domain.Chat) DiskChat {
	var createdBy *int64
	if chat.CreatedBy != nil {
		createdBy = lo.ToPtr(int64(*chat.CreatedBy))
	}
	return DiskChat{
		ID:        int64(chat.ID),
		Kind:      string(chat.Kind),
		Name:      chat.Name,
		CreatedBy: createdBy,
		CreatedAt: chat.CreatedAt.UnixNano(),
		Members: lo.Map(chat.MemberIDs(), func(id domain.UserID, _ int) int64 {
			return int64(id)
		}),
	}
}

func toChat(dc DiskChat) domain.Chat {
	var createdBy *domain.UserID
	if dc.CreatedBy != nil {
		createdBy = lo.ToPtr(domain.UserID(*dc.CreatedBy))
	}
	members := make(map[domain.UserID]struct{}, len(dc.Members))
	for _, id := range dc.Members {
		members[domain.UserID(id)] = struct{}{}
	}
	return domain.Chat{
		ID:        domain.ChatID(dc.ID),
		Kind:      domain.ChatKind(dc.Kind),
		Name:      dc.Name,
		CreatedBy: createdBy,
		CreatedAt: time.Unix(0, dc.CreatedAt).UTC(),
		Members:   members,
	}
}
