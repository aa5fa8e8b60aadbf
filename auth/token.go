package auth

import (
	"fmt"
	"strconv"
	"time"

	"quicktalk/domain"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "quicktalk"

// Token is a signed JWT handed to clients.
type Token string

func (t Token) String() string {
	return string(t)
}

// CustomClaims defines the structure of the data stored inside the JWT.
// The username travels with the token so a chat session can stamp messages
// without reading the user back.
type CustomClaims struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	Roles    []string      `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user.
func GenerateToken(secret []byte, user domain.User, roles []string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// HS256 (HMAC with SHA256)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func ValidateToken(secret []byte, tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		if claims.UserID <= 0 {
			return nil, fmt.Errorf("token carries no user")
		}
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
