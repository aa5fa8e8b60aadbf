// Package domain contains core concepts of the chat system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type UserID int64

type User struct {
	ID           UserID
	PhoneNumber  string
	Username     string
	PasswordHash string
	JoinedAt     time.Time
}

// Participant is the identity a connection is bound to once authenticated.
type Participant struct {
	ID       UserID
	Username string
}
