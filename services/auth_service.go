//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"quicktalk/auth"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/repositories"
)

var defaultRoles = []string{"user"}

type IAuthService interface {
	Login(phoneNumber, password string) (auth.Token, error)
	Register(phoneNumber, username, password string) (auth.Token, error)
}

type AuthService struct {
	userRepository    repositories.IUserRepository
	secret            []byte
	authTokenDuration time.Duration
}

func NewAuthService(repo repositories.IUserRepository, secret []byte, authTokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, secret: secret, authTokenDuration: authTokenDuration}
}

func (s *AuthService) Register(phoneNumber, username, password string) (auth.Token, error) {
	valReq := auth.RegisterRequest{
		PhoneNumber: phoneNumber,
		Username:    username,
		Password:    password,
	}

	// Validated before any expensive hashing
	if err := auth.ValidateRegister(valReq); err != nil {
		if stderrors.Is(err, errors.ErrInvalidPassword) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// The repository never sees a plain password
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(phoneNumber, username, hashedPassword)
	if err != nil {
		return "", err // ErrUserAlreadyExists if the phone number is taken
	}

	return s.issue(user)
}

func (s *AuthService) Login(phoneNumber, password string) (auth.Token, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{PhoneNumber: phoneNumber, Password: password}); err != nil {
		return "", errors.ErrInvalidCredentials
	}

	// Same error for an unknown user and a wrong password
	user, err := s.userRepository.GetUserByPhone(phoneNumber)
	if err != nil {
		if stderrors.Is(err, errors.ErrTransientStore) {
			return "", err
		}
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user domain.User) (auth.Token, error) {
	token, err := auth.GenerateToken(s.secret, user, defaultRoles, s.authTokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return auth.Token(token), nil
}
