package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelError)
	mod, err := NewModerator([]string{"darn", "heck", "blast"}, '*', log)
	require.NoError(t, err)

	tests := []struct {
		name      string
		content   string
		want      string
		wantWords []string
	}{
		{"Word inside a sentence", "well darn it", "well **** it", []string{"darn"}},
		{"Upper case with punctuation", "DARN, HECK!", "****, ****!", []string{"darn", "heck"}},
		{"Leet speak", "d4rn you", "**** you", []string{"darn"}},
		{"Dotted letters", "h.e.c.k no", "******* no", []string{"heck"}},
		{"Symbols as letters", "bl@$t", "*****", []string{"blast"}},
		{"Accents are kept", "café darn", "café ****", []string{"darn"}},
		{"Emoji is kept", "darn 🎉", "**** 🎉", []string{"darn"}},
		{"Clean message", "see you at the park", "see you at the park", nil},
		{"Empty message", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, words := mod.Censor(tt.content)
			req.Equal(tt.want, got)
			req.Equal(tt.wantWords, words)
		})
	}
}

func TestModerator_Without_Patterns(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	// Given a dictionary made of noise only
	mod, err := NewModerator([]string{"...", "", " - "}, '#', log)
	req.NoError(err)

	// Then nothing is censored
	got, words := mod.Censor("darn ...")
	req.Equal("darn ...", got)
	req.Nil(words)

	// And a nil moderator is a pass-through
	var none *Moderator
	got, words = none.Censor("darn")
	req.Equal("darn", got)
	req.Nil(words)
}

func TestModerator_Replacement_Char(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"Heck"}, '#', logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)

	got, _ := mod.Censor("oh heck")
	req.Equal("oh ####", got)
}
