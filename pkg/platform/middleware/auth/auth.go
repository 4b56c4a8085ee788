package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/httputil"
	"faceguard/pkg/requestcontext"
)

// TokenResolver maps an opaque bearer token to the username it was issued to.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (string, error)
}

// RequireAuth returns middleware that authenticates the bearer token and
// stores the client username in the request context.
func RequireAuth(resolver TokenResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Error:       httputil.CategoryInvalidCredential,
					Description: "Missing or invalid Authorization header",
				})
				return
			}

			username, err := resolver.ResolveToken(ctx, token)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"request_id", requestID,
					)
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
						Error:       httputil.CategoryInvalidCredential,
						Description: "Invalid token",
					})
					return
				}
				logger.ErrorContext(ctx, "failed to resolve token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithClient(ctx, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
