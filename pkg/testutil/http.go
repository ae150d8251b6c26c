// Package testutil provides common test helpers for handler and router tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Do serves one request against handler. A non-empty body is sent as JSON.
func Do(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// PostJSON serves a JSON POST against handler.
func PostJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	return Do(handler, http.MethodPost, path, body)
}

// DecodeJSON unmarshals the response body, failing the test on error.
func DecodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "failed to unmarshal response: %s", rec.Body.String())
	return out
}

// AssertError asserts the status and the "error" code of an error response.
func AssertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "unexpected status code")
	body := DecodeJSON[map[string]string](t, rec)
	assert.Equal(t, code, body["error"], "unexpected error code")
}
