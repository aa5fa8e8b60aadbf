package session

import (
	"encoding/json"
	"fmt"
	"time"

	"quicktalk/domain/event"
	"quicktalk/errors"

	"github.com/go-playground/validator/v10"
)

// Timestamps read "2026-01-02 15:04:05.000123+00:00", microseconds are left
// out on a whole second: "2026-01-02 15:04:05+00:00".
const (
	TimestampLayout   = "2006-01-02 15:04:05.000000-07:00"
	wholeSecondLayout = "2006-01-02 15:04:05-07:00"
)

// FormatTimestamp renders t in UTC.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(wholeSecondLayout)
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp reads both forms written by FormatTimestamp.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(wholeSecondLayout, raw)
}

var validate = validator.New()

// InboundFrame is the only frame a client sends.
type InboundFrame struct {
	Message *string `json:"message" validate:"required"`
}

// OutboundFrame is pushed to every connection of the chat, the sender's included.
type OutboundFrame struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// ParseInbound extracts the message text of a raw frame.
// Content emptiness is checked later, on the message path.
func ParseInbound(raw []byte) (string, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return "", fmt.Errorf("%w: malformed frame: %v", errors.ErrValidation, err)
	}
	if err := validate.Struct(frame); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return *frame.Message, nil
}

func NewOutboundFrame(m event.MessagePosted) OutboundFrame {
	return OutboundFrame{
		Message:   m.Content,
		Username:  m.Author,
		UserID:    int64(m.AuthorID),
		Timestamp: FormatTimestamp(m.At),
	}
}

// Encode renders the frame of an event, ok is false for events that have no
// frame representation.
func Encode(e event.DomainEvent) ([]byte, bool, error) {
	posted, ok := e.(event.MessagePosted)
	if !ok {
		return nil, false, nil
	}
	raw, err := json.Marshal(NewOutboundFrame(posted))
	return raw, true, err
}
