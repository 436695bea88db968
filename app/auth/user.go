package auth

import (
	"context"
	"strconv"
	"time"
)

// User is an account record. PasswordHash is a bcrypt digest and never
// leaves the package.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Repository is the persistence boundary for user accounts.
type Repository interface {
	// Create inserts a new account. Returns ErrEmailTaken when the email
	// is already registered (case-insensitive).
	Create(ctx context.Context, email, name string, passwordHash []byte) (*User, error)
	// ByEmail returns ErrUserNotFound when no account matches.
	ByEmail(ctx context.Context, email string) (*User, error)
	// ByID returns ErrUserNotFound when no account matches.
	ByID(ctx context.Context, id int64) (*User, error)
}

// userView is the wire representation of an account.
type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(u *User) userView {
	return userView{
		ID:        strconv.FormatInt(u.ID, 10),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
