//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"quicktalk/domain"
	"quicktalk/errors"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(phoneNumber, username, hashedPassword string) (domain.User, error)
	GetUserByPhone(phoneNumber string) (domain.User, error)
	GetUserByID(userID domain.UserID) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

const userCounterKey = "counter:user"

// DiskUser is the stored representation of a user.
type DiskUser struct {
	ID           int64  `json:"id"`
	PhoneNumber  string `json:"phone_number"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	JoinedAt     int64  `json:"joined_at"`
}

func userKey(userID domain.UserID) string {
	return fmt.Sprintf("user:%d", userID)
}

func phoneKey(phoneNumber string) string {
	return "user:phone:" + phoneNumber
}

// CreateUser persists the user with an already hashed password.
// The phone number index is checked in the same transaction, so it stays unique.
func (u UserRepository) CreateUser(phoneNumber, username, hashedPassword string) (domain.User, error) {
	var user domain.User
	err := update(u.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, phoneKey(phoneNumber))
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrUserAlreadyExists
		}
		id, err := nextCounter(txn, userCounterKey)
		if err != nil {
			return err
		}
		user = domain.User{
			ID:           domain.UserID(id),
			PhoneNumber:  phoneNumber,
			Username:     username,
			PasswordHash: hashedPassword,
			JoinedAt:     time.Now().UTC(),
		}
		if err = setJSON(txn, userKey(user.ID), fromUser(user)); err != nil {
			return err
		}
		return txn.Set([]byte(phoneKey(phoneNumber)), []byte(strconv.FormatUint(id, 10)))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUserByPhone resolves the phone index then loads the user.
func (u UserRepository) GetUserByPhone(phoneNumber string) (domain.User, error) {
	var user domain.User
	err := view(u.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(phoneKey(phoneNumber)))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}
		var raw []byte
		if raw, err = item.ValueCopy(nil); err != nil {
			return err
		}
		id, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("phone index of %s: %w", phoneNumber, err)
		}
		var du DiskUser
		if err = getJSON(txn, userKey(domain.UserID(id)), &du); err != nil {
			return err
		}
		user = toUser(du)
		return nil
	})
	return user, err
}

func (u UserRepository) GetUserByID(userID domain.UserID) (domain.User, error) {
	var user domain.User
	err := view(u.db, func(txn *badger.Txn) error {
		var du DiskUser
		if err := getJSON(txn, userKey(userID), &du); err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		user = toUser(du)
		return nil
	})
	return user, err
}

func fromUser(user domain.User) DiskUser {
	return DiskUser{
		ID:           int64(user.ID),
		PhoneNumber:  user.PhoneNumber,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		JoinedAt:     user.JoinedAt.UnixNano(),
	}
}

func toUser(du DiskUser) domain.User {
	return domain.User{
		ID:           domain.UserID(du.ID),
		PhoneNumber:  du.PhoneNumber,
		Username:     du.Username,
		PasswordHash: du.PasswordHash,
		JoinedAt:     time.Unix(0, du.JoinedAt).UTC(),
	}
}
