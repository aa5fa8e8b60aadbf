//go:generate go run go.uber.org/mock/mockgen -source=user_service.go -destination=../mocks/mock_user_service.go -package=mocks
package services

import (
	"context"
	"fmt"

	"quicktalk/auth"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/repositories"
)

// IUserService lets a caller find the user to open a personal chat with.
type IUserService interface {
	SearchByPhone(ctx context.Context, phoneNumber string) (domain.User, error)
	Get(ctx context.Context, userID domain.UserID) (domain.User, error)
}

type UserService struct {
	users repositories.IUserRepository
}

func NewUserService(users repositories.IUserRepository) *UserService {
	return &UserService{users: users}
}

// SearchByPhone returns the user registered with exactly this phone number.
func (s *UserService) SearchByPhone(_ context.Context, phoneNumber string) (domain.User, error) {
	if err := auth.ValidatePhone(phoneNumber); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return s.users.GetUserByPhone(phoneNumber)
}

func (s *UserService) Get(_ context.Context, userID domain.UserID) (domain.User, error) {
	if userID <= 0 {
		return domain.User{}, fmt.Errorf("%w: invalid user id %d", errors.ErrValidation, userID)
	}
	return s.users.GetUserByID(userID)
}
