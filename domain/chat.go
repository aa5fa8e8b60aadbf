// Package domain contains core concepts of the chat system.
// This file defines Chat entities and their membership invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"quicktalk/errors"
)

type ChatID int64

type ChatKind string

const (
	Personal ChatKind = "personal"
	Group    ChatKind = "group"
)

const MinGroupNameLength = 3

type Chat struct {
	ID        ChatID
	Kind      ChatKind
	Name      string
	CreatedBy *UserID
	CreatedAt time.Time
	Members   map[UserID]struct{}
}

func NewPersonalChat(first, second UserID, at time.Time) Chat {
	creator := first
	return Chat{
		Kind:      Personal,
		CreatedBy: &creator,
		CreatedAt: at,
		Members:   map[UserID]struct{}{first: {}, second: {}},
	}
}

func NewGroupChat(creator UserID, name string, at time.Time) Chat {
	return Chat{
		Kind:      Group,
		Name:      strings.TrimSpace(name),
		CreatedBy: &creator,
		CreatedAt: at,
		Members:   map[UserID]struct{}{creator: {}},
	}
}

// Validate checks the invariants a chat must hold before it is persisted.
func (c Chat) Validate() error {
	switch c.Kind {
	case Personal:
		if len(c.Members) != 2 {
			return errors.ErrSelfChat
		}
	case Group:
		if len([]rune(c.Name)) < MinGroupNameLength {
			return fmt.Errorf("%w: group name must have at least %d characters", errors.ErrValidation, MinGroupNameLength)
		}
		if c.CreatedBy == nil {
			return fmt.Errorf("%w: group chat needs a creator", errors.ErrValidation)
		}
		if len(c.Members) == 0 {
			return fmt.Errorf("%w: group chat needs at least one member", errors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown chat kind %q", errors.ErrValidation, c.Kind)
	}
	return nil
}

func (c Chat) HasMember(userID UserID) bool {
	_, ok := c.Members[userID]
	return ok
}

// MemberIDs returns the member set in ascending order.
func (c Chat) MemberIDs() []UserID {
	ids := make([]UserID, 0, len(c.Members))
	for id := range c.Members {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[UserID])
	return ids
}

// Counterpart returns the other member of a personal chat.
func (c Chat) Counterpart(viewer UserID) (UserID, bool) {
	if c.Kind != Personal {
		return 0, false
	}
	for id := range c.Members {
		if id != viewer {
			return id, true
		}
	}
	return 0, false
}

// CanManage tells whether the user may rename or delete the chat:
// the creator of a group, or any member of a personal chat.
func (c Chat) CanManage(userID UserID) bool {
	switch c.Kind {
	case Group:
		return c.CreatedBy != nil && *c.CreatedBy == userID
	case Personal:
		return c.HasMember(userID)
	}
	return false
}

// PairKey identifies the unordered pair of users of a personal chat.
func PairKey(a, b UserID) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
