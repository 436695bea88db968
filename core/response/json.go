package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// statusCoder is implemented by errors carrying their own HTTP status.
type statusCoder interface {
	StatusCode() int
}

// JSON writes v as an application/json response with the given status.
// Encoding goes directly to the response writer.
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if status == 0 {
		if v == nil {
			status = http.StatusNoContent
		} else {
			status = http.StatusOK
		}
	}
	w.WriteHeader(status)

	// 204 and 304 must not carry a body.
	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// Error renders err as a JSON error envelope. HTTPError values render as-is;
// anything else becomes a 500 without leaking the underlying message.
func Error(w http.ResponseWriter, err error) error {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return JSON(w, httpErr.Status, httpErr)
	}
	if sc, ok := err.(statusCoder); ok {
		return JSON(w, sc.StatusCode(), HTTPError{
			Status:  sc.StatusCode(),
			Code:    "error",
			Message: err.Error(),
		})
	}
	return JSON(w, http.StatusInternalServerError, ErrInternalServerError)
}
