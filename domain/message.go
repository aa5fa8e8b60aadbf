// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"strings"
	"time"

	"quicktalk/errors"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID         uuid.UUID // unique identifier
	ChatID     ChatID
	Seq        uint64 // assigned at persistence time, orders messages of a chat
	SenderID   UserID
	SenderName string
	Content    string
	CreatedAt  time.Time
}

// ValidateContent rejects content made only of whitespace.
// Accepted content is stored as sent.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyContent
	}
	return nil
}
