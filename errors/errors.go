package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Realtime core
	ErrForbidden      = fmt.Errorf("user is not a member of this chat")
	ErrNotFound       = fmt.Errorf("object does not exist")
	ErrValidation     = fmt.Errorf("validation failed")
	ErrEmptyContent   = fmt.Errorf("%w: message content is empty", ErrValidation)
	ErrTransientStore = fmt.Errorf("store temporarily unavailable")
	ErrTransport      = fmt.Errorf("transport failure")
	ErrSlowConsumer   = fmt.Errorf("%w: connection buffer is full", ErrTransport)
	ErrSessionClosed  = fmt.Errorf("session is closed")

	// Chat management
	ErrPersonalChatExists = fmt.Errorf("a personal chat between these users already exists")
	ErrSelfChat           = fmt.Errorf("%w: a personal chat needs two distinct users", ErrValidation)
	ErrAlreadyMember      = fmt.Errorf("the user has already joined this group chat")
	ErrNotGroupChat       = fmt.Errorf("operation not allowed for personal chat")
	ErrNotChatOwner       = fmt.Errorf("operation not allowed to non-chat creator")

	// Accounts
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnauthenticated    = fmt.Errorf("authentication required")
)

// MapToHTTPStatus converts a service error into the status code returned at the HTTP edge.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrUnauthenticated), stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden), stderrors.Is(err, ErrNotChatOwner):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrNotGroupChat):
		return http.StatusMethodNotAllowed
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, ErrValidation),
		stderrors.Is(err, ErrInvalidPassword),
		stderrors.Is(err, ErrPersonalChatExists),
		stderrors.Is(err, ErrAlreadyMember):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
