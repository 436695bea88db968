package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/core/ws"
)

// Service implements the account endpoints: registration, login, logout
// and websocket ticket minting.
type Service struct {
	users   Repository
	tickets *ws.TicketStore
	log     *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log.With("component", "auth")
		}
	}
}

func NewService(users Repository, tickets *ws.TicketStore, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, ErrNilRepository
	}
	if tickets == nil {
		return nil, ErrNilTicketStore
	}
	s := &Service{
		users:   users,
		tickets: tickets,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an account and signs the new user in on the current
// session.
func (s *Service) Register(ctx *gateway.Context) error {
	check := registerInput(ctx.Payload())

	hash, err := bcrypt.GenerateFromPassword([]byte(check.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.users.Create(ctx, check.email, check.name, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			ctx.Fail(response.ErrConflict.WithMessage("Email is already registered"))
			return nil
		}
		return err
	}

	if _, err := ctx.Auth().Login(user.ID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	ctx.JSON(http.StatusCreated, viewOf(user))
	return nil
}

// Login verifies credentials and rotates the session to the
// authenticated user. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx *gateway.Context) error {
	check := credentialsInput(ctx.Payload())

	user, err := s.users.ByEmail(ctx, check.email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			ctx.Fail(response.ErrUnauthorized.WithMessage(ErrInvalidCredentials.Error()))
			return nil
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(check.password)); err != nil {
		ctx.Fail(response.ErrUnauthorized.WithMessage(ErrInvalidCredentials.Error()))
		return nil
	}

	if _, err := ctx.Auth().Login(user.ID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	ctx.JSON(http.StatusOK, viewOf(user))
	return nil
}

// Logout ends the current session and starts a fresh anonymous one.
func (s *Service) Logout(ctx *gateway.Context) error {
	if err := ctx.Auth().Logout(); err != nil {
		return err
	}
	ctx.NoContent()
	return nil
}

// LogoutAll revokes every session of the current user, including the
// current one.
func (s *Service) LogoutAll(ctx *gateway.Context) error {
	removed, err := ctx.Auth().LogoutAll()
	if err != nil {
		return err
	}
	ctx.JSON(http.StatusOK, map[string]any{"sessions_revoked": removed})
	return nil
}

// Me returns the authenticated user's account.
func (s *Service) Me(ctx *gateway.Context) error {
	id, err := strconv.ParseInt(ctx.Auth().UserID(), 10, 64)
	if err != nil {
		return err
	}

	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			ctx.Fail(response.ErrNotFound.WithMessage("Account no longer exists"))
			return nil
		}
		return err
	}

	ctx.JSON(http.StatusOK, viewOf(user))
	return nil
}

// WSTicket mints a short-lived single-use websocket handshake ticket
// bound to the caller's current session token.
func (s *Service) WSTicket(ctx *gateway.Context) error {
	ticket, err := s.tickets.Mint(ctx, ctx.Token())
	if err != nil {
		return err
	}
	ctx.JSON(http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(s.tickets.TTL().Seconds()),
	})
	return nil
}
