package main

import (
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	IndexFilepath  string `env:"INDEX_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=8000"`
	HealthPort     int    `env:"HEALTH_PORT,default=8001"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=1024"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=500ms"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536"`

	// Lists accept commas or '|' between items
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	// Censoring is off while the blacklist is empty
	BlacklistWords            []string `env:"BLACKLIST_WORDS"`
	ModerationCharReplacement string   `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`

	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=1s"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,default=5s"`
	ReportInterval    time.Duration `env:"REPORT_INTERVAL,default=1m"`
	HealthInterval    time.Duration `env:"HEALTH_INTERVAL,default=5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT,default=5s"`
}

// loadConfig reads the configuration from es.
func loadConfig(es env.EnvSet) (Config, error) {
	var config Config
	if err := env.Unmarshal(es, &config); err != nil {
		return Config{}, err
	}
	config.AllowedOrigins = splitList(config.AllowedOrigins)
	config.BlacklistWords = splitList(config.BlacklistWords)
	return config, nil
}

// splitList flattens comma separated items, go-env only splits on '|'.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
