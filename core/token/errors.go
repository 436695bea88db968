package token

import "errors"

// MinSecretLength is the minimum acceptable signing secret size in bytes.
const MinSecretLength = 32

var (
	// ErrSecretTooShort is returned when the signing secret is shorter
	// than MinSecretLength.
	ErrSecretTooShort = errors.New("token signing secret too short")
	// ErrWeakSecret is returned when the signing secret matches a known
	// placeholder value.
	ErrWeakSecret = errors.New("token signing secret is a known-weak placeholder")
)
