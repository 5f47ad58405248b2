package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenvault/photovault/internal/apperr"
)

// claims is the minimal claim set this stub checks: just expiry and
// signature, no per-user session state (no login/refresh flow — that
// external system is outside this module's core).
type claims struct {
	jwt.RegisteredClaims
}

type subjectKey struct{}

// RequireAuth verifies a Bearer JWT against secret before letting a
// request reach the wrapped handler, and stores the token's subject
// in the request context under SubjectFromContext.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				Error(w, "missing bearer token", apperr.Newf(apperr.KindInvalidInput, "httpapi.RequireAuth", "missing Authorization header"))
				return
			}

			var c claims
			_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, apperr.Newf(apperr.KindInvalidInput, "httpapi.RequireAuth", "unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil {
				Error(w, "invalid bearer token", apperr.New(apperr.KindInvalidInput, "httpapi.RequireAuth", err))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, c.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the verified token's subject, if
// RequireAuth ran on this request.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}
