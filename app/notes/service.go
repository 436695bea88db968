package notes

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/response"
)

// defaultListLimit caps list responses; pagination can come later if a
// client ever holds more notes than this.
const defaultListLimit = 100

// Service implements the note endpoints, available both over HTTP and as
// websocket events.
type Service struct {
	repo Repository
	log  *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log.With("component", "notes")
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	s := &Service{
		repo: repo,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func ownerID(ctx *gateway.Context) (int64, error) {
	return strconv.ParseInt(ctx.Auth().UserID(), 10, 64)
}

// List returns the caller's notes, newest first.
func (s *Service) List(ctx *gateway.Context) error {
	uid, err := ownerID(ctx)
	if err != nil {
		return err
	}

	list, err := s.repo.List(ctx, uid, defaultListLimit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*Note{}
	}
	ctx.JSON(http.StatusOK, map[string]any{"notes": list})
	return nil
}

// Create stores a new note for the caller.
func (s *Service) Create(ctx *gateway.Context) error {
	uid, err := ownerID(ctx)
	if err != nil {
		return err
	}

	payload := ctx.Payload()
	title, _ := payload["title"].(string)
	body, _ := payload["body"].(string)

	now := time.Now()
	note := &Note{
		ID:        uuid.NewString(),
		UserID:    uid,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "note created", "note_id", note.ID, "user_id", uid)
	ctx.JSON(http.StatusCreated, note)
	return nil
}

// Get returns one note by id.
func (s *Service) Get(ctx *gateway.Context) error {
	uid, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, ok := noteID(ctx)
	if !ok {
		ctx.Fail(response.ErrNotFound)
		return nil
	}

	note, err := s.repo.ByID(ctx, uid, id)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			ctx.Fail(response.ErrNotFound)
			return nil
		}
		return err
	}
	ctx.JSON(http.StatusOK, note)
	return nil
}

// Update replaces a note's title and body.
func (s *Service) Update(ctx *gateway.Context) error {
	uid, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, ok := noteID(ctx)
	if !ok {
		ctx.Fail(response.ErrNotFound)
		return nil
	}

	payload := ctx.Payload()
	title, _ := payload["title"].(string)
	body, _ := payload["body"].(string)

	note, err := s.repo.Update(ctx, uid, id, title, body)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			ctx.Fail(response.ErrNotFound)
			return nil
		}
		return err
	}
	ctx.JSON(http.StatusOK, note)
	return nil
}

// Delete removes a note.
func (s *Service) Delete(ctx *gateway.Context) error {
	uid, err := ownerID(ctx)
	if err != nil {
		return err
	}
	id, ok := noteID(ctx)
	if !ok {
		ctx.Fail(response.ErrNotFound)
		return nil
	}

	if err := s.repo.Delete(ctx, uid, id); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			ctx.Fail(response.ErrNotFound)
			return nil
		}
		return err
	}
	ctx.NoContent()
	return nil
}

// noteID reads the note id from the URL parameter or, for websocket
// events, from the payload. Malformed ids are treated as not found.
func noteID(ctx *gateway.Context) (string, bool) {
	id := ctx.Param("id")
	if id == "" {
		id, _ = ctx.Payload()["id"].(string)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
