package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)

// Billing errors
var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrBillNotFound    = errors.New("bill not found")
	ErrNoPaymentsFound = errors.New("no payments found for member")
	ErrNoBillsFound    = errors.New("no bills found for member")
	ErrBillAlreadyPaid = errors.New("bill already paid")
)
