package repositories

import (
	"testing"

	"quicktalk/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	user, err := repository.CreateUser("+33612345678", "alice", "$argon2id$hash")
	req.NoError(err)
	req.NotZero(user.ID)

	byPhone, err := repository.GetUserByPhone("+33612345678")
	req.NoError(err)
	req.Equal(user, byPhone)

	byID, err := repository.GetUserByID(user.ID)
	req.NoError(err)
	req.Equal("alice", byID.Username)

	_, err = repository.CreateUser("+33612345678", "other", "$argon2id$hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	_, err = repository.GetUserByPhone("+33000000000")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = repository.GetUserByID(999)
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestUserRepository_GetUserByPhone_Store_Failure(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)
	_, err := repository.CreateUser("+33612345678", "alice", "$argon2id$hash")
	req.NoError(err)

	// Given the store is gone
	req.NoError(db.Close())

	// Then the lookup fails as a transient failure, not as an unknown user
	_, err = repository.GetUserByPhone("+33612345678")
	req.ErrorIs(err, errors.ErrTransientStore)
	req.NotErrorIs(err, errors.ErrNotFound)
}
