package main

import (
	"log/slog"
	"testing"
	"time"

	"quicktalk/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func required() env.EnvSet {
	return env.EnvSet{
		"BADGER_FILEPATH": "/tmp/badger",
		"INDEX_FILEPATH":  "/tmp/index",
		"JWT_SECRET":      "secret",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)

	config, err := loadConfig(required())
	req.NoError(err)
	req.Equal(8000, config.Port)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.Equal("*", config.ModerationCharReplacement)
	req.Empty(config.AllowedOrigins)
	req.Empty(config.BlacklistWords)
}

func TestLoadConfig_Lists(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"Comma separated", "http://a.com,http://b.com", []string{"http://a.com", "http://b.com"}},
		{"Pipe separated", "http://a.com|http://b.com", []string{"http://a.com", "http://b.com"}},
		{"Spaces and blanks", " http://a.com , ,http://b.com ", []string{"http://a.com", "http://b.com"}},
		{"Single value", "http://a.com", []string{"http://a.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			es := required()
			es["ALLOWED_ORIGINS"] = tt.value
			es["BLACKLIST_WORDS"] = tt.value

			config, err := loadConfig(es)
			req.NoError(err)
			req.Equal(tt.want, config.AllowedOrigins)
			req.Equal(tt.want, config.BlacklistWords)
		})
	}
}

func TestLoadConfig_Required(t *testing.T) {
	req := require.New(t)
	es := required()
	delete(es, "JWT_SECRET")

	_, err := loadConfig(es)
	req.Error(err)
}

func TestLoadModerator_From_Comma_List(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	// Given words configured as a comma list
	es := required()
	es["BLACKLIST_WORDS"] = "darn,heck"
	config, err := loadConfig(es)
	req.NoError(err)

	// When the moderator is built
	moderator, err := loadModerator(config, repositories.NewBlacklistRepository(db), log)
	req.NoError(err)
	req.NotNil(moderator)

	// Then both words are censored
	content, words := moderator.Censor("darn it, heck")
	req.Equal("**** it, ****", content)
	req.Equal([]string{"darn", "heck"}, words)
}
