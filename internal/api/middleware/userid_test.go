package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/mf-folio-backend/internal/api/middleware"
	"github.com/ndewijer/mf-folio-backend/internal/testutil"
)

func TestValidateUserIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		wantStatus int
		wantCalled bool
		wantError  string
	}{
		{"passes through numeric id", "48213", http.StatusOK, true, ""},
		{"passes through slug id", "user_42-b", http.StatusOK, true, ""},
		{"rejects missing id", "", http.StatusBadRequest, false, "user id is required"},
		{"rejects illegal characters", "42;drop", http.StatusBadRequest, false, "invalid user id"},
		{"rejects overlong id", strings.Repeat("9", 65), http.StatusBadRequest, false, "invalid user id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := testutil.NewRequestWithURLParams(http.MethodGet, "/test", map[string]string{"userId": tt.userID})
			w := httptest.NewRecorder()

			middleware.ValidateUserIDMiddleware(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCalled, handlerCalled)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				body := testutil.DecodeJSON[map[string]string](t, w)
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
