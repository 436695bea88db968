package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNilRepository      = errors.New("user repository cannot be nil")
	ErrNilTicketStore     = errors.New("ticket store cannot be nil")
)
