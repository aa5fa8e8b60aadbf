package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"quicktalk/domain"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"
)

func TestChatIndex_SearchGroups(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()
	index := NewChatIndex(writer, slog.Default())

	at := time.Now()
	gophers := domain.NewGroupChat(1, "Gophers Paris", at)
	gophers.ID = 1
	climbing := domain.NewGroupChat(1, "Climbing club", at)
	climbing.ID = 2
	personal := domain.NewPersonalChat(1, 2, at)
	personal.ID = 3
	for _, chat := range []domain.Chat{gophers, climbing, personal} {
		req.NoError(index.Index(chat))
	}

	// When searching with a partial, differently cased word
	ids, err := index.SearchGroups(ctx, "GOPH", 10)
	req.NoError(err)
	req.Equal([]domain.ChatID{gophers.ID}, ids)

	// Then every word must match
	ids, err = index.SearchGroups(ctx, "club climb", 10)
	req.NoError(err)
	req.Equal([]domain.ChatID{climbing.ID}, ids)

	ids, err = index.SearchGroups(ctx, "   ", 10)
	req.NoError(err)
	req.Empty(ids)

	// And removed chats disappear
	req.NoError(index.Remove(gophers.ID))
	ids, err = index.SearchGroups(ctx, "gophers", 10)
	req.NoError(err)
	req.Empty(ids)
}
