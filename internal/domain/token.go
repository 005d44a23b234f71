package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose is the intended use of a token, bound into the signed claim
// payload so a token minted for one flow cannot be presented to another.
type TokenPurpose string

const (
	PurposeVerify        TokenPurpose = "verify"
	PurposePasswordReset TokenPurpose = "password-reset"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = time.Hour

// Token is a single-use, time-bound credential row. Raw is the wire-format
// string handed to the user out-of-band; Active is a one-way latch flipped
// exactly once on consumption, or lazily when the row is observed past
// ExpiresAt.
type Token struct {
	ID        uuid.UUID
	Raw       string
	OwnerID   uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Active    bool
}

// Expired reports whether the row is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
