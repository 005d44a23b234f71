package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account entity. Email is the login identifier; Username is
// the public display handle. IsVerified flips once the user confirms their
// email through a verification token.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	IsSuperuser  bool
	DateJoined   time.Time
	UpdatedAt    time.Time
}
