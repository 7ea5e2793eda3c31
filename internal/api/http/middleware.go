package http

import (
	"errors"
	"net/http"
	"strings"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/security"
)

// RequireAuth verifies an access token from the Authorization header or,
// for websocket clients that cannot set headers, the "token" query parameter.
func RequireAuth(v security.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, apperr.Unauthorized("authorization token is not provided"))
				return
			}
			id, err := v.Verify(r.Context(), token, security.TokenTypeAccess)
			if err != nil {
				if errors.Is(err, security.ErrWrongTokenType) {
					writeError(w, apperr.Forbidden("access token required"))
					return
				}
				writeError(w, apperr.Wrap(apperr.CodeUnauthorized, err, "invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
