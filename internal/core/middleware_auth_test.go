package core

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"agriklima/internal/config"
	"agriklima/internal/types"
)

// staticAuthenticator resolves any token to a fixed actor, or fails.
type staticAuthenticator struct {
	actor types.Actor
	err   error
}

func (a *staticAuthenticator) Authenticate(context.Context, string) (types.Actor, error) {
	if a.err != nil {
		return types.Actor{}, a.err
	}
	return a.actor, nil
}

func newTestServer(t *testing.T, auth Authenticator) *Server {
	t.Helper()
	srv, err := NewServer(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	srv.Authenticator = auth
	return srv
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoTokenPassesThrough(t *testing.T) {
	srv := newTestServer(t, &staticAuthenticator{})

	var sawActor bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawActor = types.GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/crops", nil)
	srv.AuthMiddleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if sawActor {
		t.Error("expected no actor in context for anonymous request")
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	srv := newTestServer(t, &staticAuthenticator{
		actor: types.Actor{ID: "u-1", Email: "juan@example.com"},
	})

	var gotActor types.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = types.GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	r.Header.Set("Authorization", "Bearer some-token")
	srv.AuthMiddleware(next).ServeHTTP(w, r)

	if gotActor.ID != "u-1" {
		t.Errorf("expected actor u-1, got %q", gotActor.ID)
	}
}

func TestAuthMiddleware_InvalidTokenRejected(t *testing.T) {
	srv := newTestServer(t, &staticAuthenticator{
		err: types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil),
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/crops", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	srv.AuthMiddleware(okHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for present-but-invalid token, got %d", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("anonymous rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		RequireAuth(okHandler()).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}

		var body APIErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Error.Code != string(types.ErrCodeAuthTokenMissing) {
			t.Errorf("expected auth_token_missing, got %q", body.Error.Code)
		}
	})

	t.Run("authenticated allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		r = r.WithContext(types.WithActor(r.Context(), types.Actor{ID: "u-1"}))
		RequireAuth(okHandler()).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("anonymous rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/v1/conditions/rules", nil)
		RequireAdmin(okHandler()).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/v1/conditions/rules", nil)
		r = r.WithContext(types.WithActor(r.Context(), types.Actor{ID: "u-1"}))
		RequireAdmin(okHandler()).ServeHTTP(w, r)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/v1/conditions/rules", nil)
		r = r.WithContext(types.WithActor(r.Context(), types.Actor{ID: "u-1", IsAdmin: true}))
		RequireAdmin(okHandler()).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"well formed", "Bearer abc123", "abc123"},
		{"case insensitive scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if got := bearerToken(r); got != tc.want {
				t.Errorf("bearerToken() = %q, want %q", got, tc.want)
			}
		})
	}
}
