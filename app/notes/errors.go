package notes

import "errors"

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrNilRepository = errors.New("note repository cannot be nil")
)
