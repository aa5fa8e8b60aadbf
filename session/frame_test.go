package session

import (
	"testing"
	"time"

	"quicktalk/domain/event"
	"quicktalk/errors"

	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"Microseconds", time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC), "2026-01-02 03:04:05.123456+00:00"},
		{"Whole second", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), "2026-01-02 03:04:05+00:00"},
		{"Below a microsecond", time.Date(2026, 1, 2, 3, 4, 5, 999, time.UTC), "2026-01-02 03:04:05+00:00"},
		{"Converted to UTC", time.Date(2026, 1, 2, 4, 4, 5, 0, paris), "2026-01-02 03:04:05+00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got := FormatTimestamp(tt.at)
			req.Equal(tt.want, got)

			parsed, err := ParseTimestamp(got)
			req.NoError(err)
			req.True(tt.at.Truncate(time.Microsecond).Equal(parsed))
		})
	}
}

func TestParseInbound(t *testing.T) {
	req := require.New(t)

	content, err := ParseInbound([]byte(`{"message":"hi"}`))
	req.NoError(err)
	req.Equal("hi", content)

	for _, raw := range []string{`not json`, `{}`, `{"message":null}`, `{"message":3}`} {
		_, err = ParseInbound([]byte(raw))
		req.ErrorIs(err, errors.ErrValidation, raw)
	}
}

func TestEncode(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	raw, ok, err := Encode(event.MessagePosted{Chat: 1, AuthorID: 1, Author: "u1", Content: "hi", At: at})
	req.NoError(err)
	req.True(ok)
	req.JSONEq(`{"message":"hi","username":"u1","user_id":1,"timestamp":"2026-01-02 03:04:05+00:00"}`, string(raw))
}
