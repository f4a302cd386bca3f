package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"collectbook/internal/domain"
	"collectbook/internal/repository"
)

type ctxKey string

const CollectorIDKey ctxKey = "collectorID"

// TokenMiddleware authenticates requests by a bearer token (or a token
// query parameter, used by websocket clients) against the collector token
// store, and puts the collector id on the request context.
func TokenMiddleware(tokenRepo *repository.CollectorTokenRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok *domain.CollectorToken

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				plainToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if plainToken != "" {
					if t, err := tokenRepo.FindByPlainToken(r.Context(), plainToken); err == nil {
						tok = t
					}
				}
			}

			if tok == nil {
				if token := r.URL.Query().Get("token"); token != "" {
					if t, err := tokenRepo.FindByPlainToken(r.Context(), token); err == nil {
						tok = t
					}
				}
			}

			if tok == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CollectorIDKey, tok.CollectorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCollectorID(ctx context.Context) (string, error) {
	collectorID, ok := ctx.Value(CollectorIDKey).(string)
	if !ok || collectorID == "" {
		return "", errors.New("collectorID not found in context")
	}
	return collectorID, nil
}
