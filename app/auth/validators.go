package auth

import "github.com/teamgrid/gateway/core/validator"

// Validator names referenced by route declarations.
const (
	ValidatorCredentials = "auth_credentials"
	ValidatorRegister    = "auth_register"
)

// Password bounds follow bcrypt's 72-byte input limit.
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

type credentials struct {
	email    string
	password string
	name     string
}

func credentialsInput(payload map[string]any) credentials {
	check := validator.NewCheck(payload)
	return credentials{
		email:    check.String("email"),
		password: check.String("password"),
	}
}

func registerInput(payload map[string]any) credentials {
	check := validator.NewCheck(payload)
	return credentials{
		email:    check.String("email"),
		password: check.String("password"),
		name:     check.String("name"),
	}
}

// ValidateCredentials checks the login payload.
func ValidateCredentials(payload map[string]any) error {
	check := validator.NewCheck(payload)
	check.Email("email")
	check.RequireString("password", minPasswordLen, maxPasswordLen)
	return check.Err()
}

// ValidateRegister checks the registration payload.
func ValidateRegister(payload map[string]any) error {
	check := validator.NewCheck(payload)
	check.Email("email")
	check.RequireString("password", minPasswordLen, maxPasswordLen)
	check.RequireString("name", 1, 100)
	return check.Err()
}
