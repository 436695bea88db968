package cookie

import "errors"

// ErrNotFound is returned when the session cookie is absent from a request.
var ErrNotFound = errors.New("session cookie not found")
