package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"marketplace-portal/apiclient"
	"marketplace-portal/helper"
)

// AuthMiddleware verifies the bearer token once per request and puts the
// resulting session in the context. The same token is forwarded to the
// marketplace API.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			helper.WriteErrorJSON(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			helper.WriteErrorJSON(w, http.StatusUnauthorized, "invalid Authorization format (use Bearer token)")
			return
		}

		session, err := helper.ParseSessionToken(tokenStr)
		if err != nil {
			helper.WriteErrorJSON(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := helper.WithSession(r.Context(), session)
		ctx = apiclient.WithBearer(ctx, session.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireScreen lets the request through only when the session may open
// screen.
func RequireScreen(screen string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := helper.SessionFromContext(r.Context())
			if err != nil {
				helper.WriteErrorJSON(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !s.CanSee(screen) {
				slog.Warn("screen denied", "screen", screen, "user", s.UserInfo.ID, "role", s.Role)
				helper.WriteErrorJSON(w, http.StatusForbidden, "you do not have access to "+screen)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
