//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"quicktalk/domain"

	"github.com/blugelabs/bluge"
)

const (
	fieldName = "name"
	fieldKind = "kind"
)

type IChatIndex interface {
	Index(chat domain.Chat) error
	Remove(chatID domain.ChatID) error
	SearchGroups(ctx context.Context, query string, limit int) ([]domain.ChatID, error)
}

// ChatIndex is a Bluge full-text index over group chat names.
type ChatIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewChatIndex(writer *bluge.Writer, log *slog.Logger) *ChatIndex {
	return &ChatIndex{writer: writer, log: log}
}

func chatDocID(chatID domain.ChatID) string {
	return strconv.FormatInt(int64(chatID), 10)
}

// Index adds or replaces the document of a group chat. Personal chats have no
// searchable name and are skipped.
func (c *ChatIndex) Index(chat domain.Chat) error {
	if chat.Kind != domain.Group {
		return nil
	}
	doc := bluge.NewDocument(chatDocID(chat.ID)).
		AddField(bluge.NewTextField(fieldName, strings.ToLower(chat.Name)).StoreValue()).
		AddField(bluge.NewKeywordField(fieldKind, string(chat.Kind)))
	return c.writer.Update(doc.ID(), doc)
}

func (c *ChatIndex) Remove(chatID domain.ChatID) error {
	return c.writer.Delete(bluge.Identifier(chatDocID(chatID)))
}

// SearchGroups returns ids of group chats whose name contains every word of the
// query, matched case-insensitively as a substring of an indexed term.
func (c *ChatIndex) SearchGroups(ctx context.Context, query string, limit int) ([]domain.ChatID, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(string(domain.Group)).SetField(fieldKind))
	for _, word := range words {
		q.AddMust(bluge.NewWildcardQuery("*" + word + "*").SetField(fieldName))
	}

	reader, err := c.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var ids []domain.ChatID
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id, parseErr := strconv.ParseInt(string(value), 10, 64)
				if parseErr != nil {
					c.log.Warn("Skipping malformed chat document", "id", string(value))
					return true
				}
				ids = append(ids, domain.ChatID(id))
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	return ids, err
}
