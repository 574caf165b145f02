package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams creates an HTTP request with chi URL parameters.
// This helper simplifies testing chi handlers that use chi.URLParam() to extract path parameters.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/portfolio/42/summary",
//	    map[string]string{"userId": "42"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return WithURLParams(httptest.NewRequest(method, path, nil), params)
}

// NewJSONRequest creates an HTTP request whose body is body encoded as JSON.
// A string body is sent verbatim, which allows malformed payloads.
//
// Example:
//
//	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/portfolio/summary",
//	    map[string]any{"records": records})
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	case nil:
	default:
		var err error
		payload, err = json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParams attaches chi URL parameters to req.
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	if len(params) == 0 {
		return req
	}

	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// DecodeJSON decodes a recorded response body into T.
//
// Example:
//
//	body := testutil.DecodeJSON[map[string]any](t, w)
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
	}
	return v
}

// NewRequestWithQueryParams creates an HTTP request with the given query string values.
//
// Example:
//
//	req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/42/summary",
//	    map[string]string{"today": "2024-01-01"})
func NewRequestWithQueryParams(method, path string, query map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if len(query) == 0 {
		return req
	}

	values := req.URL.Query()
	for key, value := range query {
		values.Set(key, value)
	}
	req.URL.RawQuery = values.Encode()
	return req
}
