package core

import (
	"net/http"
	"strings"

	"agriklima/internal/types"
)

// AuthMiddleware resolves the Actor from an Authorization bearer token, when
// one is present, and stores it in the request context. Requests without a
// token pass through unauthenticated; enforcement happens per-route via
// RequireAuth and RequireAdmin so that public reads (crops, pests, news,
// weather, active rules) stay unauthenticated.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || s.Authenticator == nil {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := s.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			// A present-but-invalid token is rejected outright rather than
			// downgraded to anonymous.
			Error(w, r, err)
			return
		}

		ctx := types.WithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that do not carry an authenticated Actor.
// Mount on route groups that need a signed-in user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := types.GetActor(r.Context()); !ok {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenMissing,
				"authentication required",
				nil,
			))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose Actor lacks the administrator flag.
// Implies RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := types.GetActor(r.Context())
		if !ok {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenMissing,
				"authentication required",
				nil,
			))
			return
		}
		if !actor.IsAdmin {
			Error(w, r, types.NewAppError(
				types.ErrCodePermissionAdminOnly,
				"administrator privilege required",
				nil,
			))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns empty string when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
