package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/core/response"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, response.JSON(w, http.StatusCreated, map[string]any{"id": "1"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
}

func TestJSONZeroStatus(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, response.JSON(w, 0, map[string]any{"ok": true}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	require.NoError(t, response.JSON(w, 0, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHTTPError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	err := response.ErrUnprocessableEntity.WithMessages(map[string][]string{
		"title": {"must not be empty"},
	})
	require.NoError(t, response.Error(w, err))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Code     string              `json:"code"`
		Messages map[string][]string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unprocessable_entity", body.Code)
	assert.Contains(t, body.Messages, "title")
}

func TestErrorRetryAfter(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, response.Error(w, response.ErrTooManyRequests.WithRetryAfter(7)))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Code       string `json:"code"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "too_many_requests", body.Code)
	assert.Equal(t, 7, body.RetryAfter)
	assert.NotContains(t, w.Body.String(), "details")
}

func TestErrorUnknown(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, response.Error(w, errors.New("database credentials invalid")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "credentials", "internal details must not leak")
}

func TestErrorWrappedHTTPError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	wrapped := errors.Join(response.ErrNotFound, errors.New("row missing"))
	require.NoError(t, response.Error(w, wrapped))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
