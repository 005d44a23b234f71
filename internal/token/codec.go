package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

const (
	// keySize is the number of master-secret bytes used for signing and
	// encryption. Longer secrets are truncated; shorter ones are rejected.
	keySize = 32

	// encPrefix marks the authenticated-encryption envelope. A bare signed
	// token is a compact JWS, whose base64 header always starts with "eyJ",
	// so the two forms are distinguishable by prefix alone.
	encPrefix = "enc."
	jwsPrefix = "eyJ"
)

// Claims is the payload signed into every token.
type Claims struct {
	Purpose domain.TokenPurpose `json:"token_type"`
	UserID  string              `json:"user_id"`
	jwt.RegisteredClaims
}

// Owner returns the user ID embedded in the payload.
func (c *Claims) Owner() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// Codec turns a claim payload into a tamper-evident wire string and back.
// The signed form is an HS256 compact JWS; when encryption is enabled the
// JWS is additionally sealed with AES-256-GCM under the same derived key.
type Codec struct {
	key       []byte
	encrypted bool
}

// NewCodec derives the working key from the first keySize bytes of secret.
func NewCodec(secret string, encrypted bool) (*Codec, error) {
	if len(secret) < keySize {
		return nil, fmt.Errorf("secret must be at least %d bytes, got %d", keySize, len(secret))
	}
	return &Codec{key: []byte(secret)[:keySize], encrypted: encrypted}, nil
}

// Encode signs the payload and, if the codec is encrypting, seals the signed
// string into the self-describing envelope form.
func (c *Codec) Encode(id, userID uuid.UUID, purpose domain.TokenPurpose, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		Purpose: purpose,
		UserID:  userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	if !c.encrypted {
		return signed, nil
	}

	sealed, err := c.seal([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return encPrefix + sealed, nil
}

// Decode probes the wire form by prefix, decrypts if needed, then verifies
// the signature and parses the payload. Expiry is deliberately not enforced
// here: the store checks it after purpose and owner so each failure reports
// its own error.
func (c *Codec) Decode(raw string) (*Claims, error) {
	compact := raw
	switch {
	case strings.HasPrefix(raw, encPrefix):
		opened, err := c.open(strings.TrimPrefix(raw, encPrefix))
		if err != nil {
			return nil, domain.ErrInvalidToken
		}
		compact = string(opened)
	case strings.HasPrefix(raw, jwsPrefix):
		// bare signed form
	default:
		return nil, domain.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(compact, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	}); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.Owner(); err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// seal encrypts plaintext with AES-256-GCM and encodes nonce||ciphertext.
func (c *Codec) seal(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// open reverses seal, authenticating the ciphertext in the process.
func (c *Codec) open(encoded string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
