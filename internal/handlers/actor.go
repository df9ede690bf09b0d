package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/clipstream/backend/internal/logging"
)

type actorKey struct{}

// WithActor stores the authenticated user id on the context.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the authenticated user id, or "" when anonymous.
func ActorFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actorKey{}).(string); ok {
		return id
	}
	return ""
}

// AccessVerifier validates an access token and returns its subject.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// RequireAuth rejects requests lacking a valid bearer access token and
// stores the actor id on the request context for downstream handlers.
func RequireAuth(verifier AccessVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "missing access token")
			return
		}

		userID, err := verifier.VerifyAccess(token)
		if err != nil {
			logging.FromContext(ctx).Warn("access token rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		}

		next(w, r.WithContext(WithActor(ctx, userID)))
	}
}

// OptionalAuth stores the actor id when a valid token is presented but lets
// anonymous requests through. Used by read paths that personalize output.
func OptionalAuth(verifier AccessVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if userID, err := verifier.VerifyAccess(token); err == nil {
				r = r.WithContext(WithActor(r.Context(), userID))
			}
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
