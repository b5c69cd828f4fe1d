package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventboard/server/internal/api/problem"
	"github.com/eventboard/server/internal/auth"
	"github.com/eventboard/server/internal/metrics"
)

type contextKeyAuth string

const userClaimsKey contextKeyAuth = "userClaims"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer <token>"
// header before next runs. Every failure gets the same 401 body.
func BearerAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				metrics.TokenRejections.WithLabelValues("missing").Inc()
				problem.Write(w, r, problem.InvalidToken, err)
				return
			}

			if validator == nil {
				metrics.TokenRejections.WithLabelValues("invalid").Inc()
				problem.Write(w, r, problem.InvalidToken, errors.New("token validator not configured"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				metrics.TokenRejections.WithLabelValues("invalid").Inc()
				problem.Write(w, r, problem.InvalidToken, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

func UserClaims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(userClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// UserID returns the authenticated user's id, or "" on unguarded routes.
func UserID(r *http.Request) string {
	if claims := UserClaims(r); claims != nil {
		return claims.UserID
	}
	return ""
}
