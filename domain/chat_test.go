package domain

import (
	"testing"
	"time"

	"quicktalk/errors"

	"github.com/stretchr/testify/require"
)

func TestChat_Validate(t *testing.T) {
	at := time.Now().UTC()
	tests := []struct {
		name    string
		chat    Chat
		wantErr error
	}{
		{"Personal chat between two users", NewPersonalChat(1, 2, at), nil},
		{"Personal chat with oneself", NewPersonalChat(1, 1, at), errors.ErrSelfChat},
		{"Group chat with a valid name", NewGroupChat(1, "Friends", at), nil},
		{"Group chat name too short", NewGroupChat(1, "ab", at), errors.ErrValidation},
		{"Group chat name made of spaces", NewGroupChat(1, "     ", at), errors.ErrValidation},
		{"Unknown kind", Chat{Kind: "channel"}, errors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := tt.chat.Validate()
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestChat_Counterpart_And_Management(t *testing.T) {
	req := require.New(t)
	personal := NewPersonalChat(1, 2, time.Now())

	other, ok := personal.Counterpart(1)
	req.True(ok)
	req.Equal(UserID(2), other)

	// Any member may manage a personal chat
	req.True(personal.CanManage(2))
	req.False(personal.CanManage(3))

	group := NewGroupChat(7, "Climbing", time.Now())
	group.Members[8] = struct{}{}
	_, ok = group.Counterpart(7)
	req.False(ok)

	// Only the creator manages a group
	req.True(group.CanManage(7))
	req.False(group.CanManage(8))
	req.Equal([]UserID{7, 8}, group.MemberIDs())
}

func TestPairKey_IsOrderIndependent(t *testing.T) {
	req := require.New(t)
	req.Equal(PairKey(3, 9), PairKey(9, 3))
	req.Equal("3:9", PairKey(9, 3))
}

func TestValidateContent(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateContent("  hi  "))
	req.ErrorIs(ValidateContent(""), errors.ErrEmptyContent)

	err := ValidateContent(" \n\t ")
	req.ErrorIs(err, errors.ErrEmptyContent)
	req.ErrorIs(err, errors.ErrValidation)
}
