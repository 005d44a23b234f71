package domain

import "errors"

// Token errors
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInactive = errors.New("token already used")
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongPurpose  = errors.New("token purpose mismatch")
	ErrOwnerMismatch = errors.New("token owner mismatch")
	ErrTokenExpired  = errors.New("token expired")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrNotVerified        = errors.New("user not verified")
)

// Blog errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCategoryNotFound = errors.New("category not found")
)
