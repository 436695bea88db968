package router

import "errors"

var (
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidRoute   = errors.New("invalid route")
	ErrInvalidPattern = errors.New("invalid route path pattern")
	ErrDuplicateParam = errors.New("duplicate parameter name")
	ErrUnknownNode    = errors.New("unknown route node type")
)
