package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quicktalk/domain"
	"quicktalk/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-with-enough-entropy-2026")

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyPassw0rdIsStr0ng!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)

	// Garbage hash
	_, err = ComparePassword(password, "$bcrypt$whatever")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"+33612345678", "alice", "ComplexPass123!"}, false},
		{"Invalid phone", RegisterRequest{"0612", "alice", "ComplexPass123!"}, true},
		{"Username too short", RegisterRequest{"+33612345678", "al", "ComplexPass123!"}, true},
		{"Username too long", RegisterRequest{"+33612345678", strings.Repeat("a", 16), "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"+33612345678", "alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"+33612345678", "alice", "NoDigitPass!"}, true},
		{"Missing special char", RegisterRequest{"+33612345678", "alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"+33612345678", "alice", "nouppercase123!"}, true},
		{"Password too long", RegisterRequest{"+33612345678", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestRegistrationValidation_Complexity_Error(t *testing.T) {
	req := require.New(t)

	err := ValidateRegister(RegisterRequest{"+33612345678", "alice", "nouppercase123!"})

	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestToken_RoundTrip(t *testing.T) {
	req := require.New(t)
	user := domain.User{ID: 42, Username: "alice"}

	token, err := GenerateToken(secret, user, []string{"user"}, time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(secret, token)
	req.NoError(err)
	req.Equal(domain.UserID(42), claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal([]string{"user"}, claims.Roles)
}

func TestToken_Rejected(t *testing.T) {
	req := require.New(t)
	user := domain.User{ID: 42, Username: "alice"}

	// Given a token signed with another secret
	forged, err := GenerateToken([]byte("another-secret"), user, nil, time.Hour)
	req.NoError(err)
	_, err = ValidateToken(secret, forged)
	req.Error(err)

	// Given an expired token
	expired, err := GenerateToken(secret, user, nil, -time.Minute)
	req.NoError(err)
	_, err = ValidateToken(secret, expired)
	req.Error(err)

	// Given garbage
	_, err = ValidateToken(secret, "not-a-jwt")
	req.Error(err)
}

func TestMiddleware(t *testing.T) {
	log := logs.GetLoggerFromString("ERROR")
	token, err := GenerateToken(secret, domain.User{ID: 7, Username: "bob"}, []string{"user"}, time.Hour)
	require.NoError(t, err)

	var seen Identity
	handler := Middleware(secret, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("should accept a bearer token", func(t *testing.T) {
		req := require.New(t)
		seen = Identity{}
		r := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		req.Equal(http.StatusNoContent, w.Code)
		req.Equal(Identity{UserID: 7, Username: "bob"}, seen)
	})

	t.Run("should accept a query token", func(t *testing.T) {
		req := require.New(t)
		seen = Identity{}
		r := httptest.NewRequest(http.MethodGet, "/ws/chat/1/?token="+token, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		req.Equal(http.StatusNoContent, w.Code)
		req.Equal(domain.UserID(7), seen.UserID)
	})

	t.Run("should reject a missing token", func(t *testing.T) {
		req := require.New(t)
		r := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		req.Equal(http.StatusUnauthorized, w.Code)
	})

	t.Run("should reject an invalid token", func(t *testing.T) {
		req := require.New(t)
		r := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}

func TestValidatePhone(t *testing.T) {
	req := require.New(t)
	req.NoError(ValidatePhone("+33612345678"))
	for _, phone := range []string{"", "0612345678", "+33 6 12 34 56 78", "phone"} {
		req.Error(ValidatePhone(phone), phone)
	}
}
