package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/influencer-api/internal/profileloader"
	"github.com/rpattn/influencer-api/internal/repository"
)

type ctxKey string

const (
	profileLoaderKey ctxKey = "profileLoader"
	requestIDKey     ctxKey = "requestID"
)

// ProfileLoaderMiddleware attaches a fresh profile loader to every request context
func ProfileLoaderMiddleware(repo repository.InfluencerRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := profileloader.NewProfileLoader(repo)
			ctx := context.WithValue(r.Context(), profileLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileLoaderFromContext retrieves the request's profile loader, or nil
func ProfileLoaderFromContext(ctx context.Context) *profileloader.ProfileLoader {
	if l, ok := ctx.Value(profileLoaderKey).(*profileloader.ProfileLoader); ok {
		return l
	}
	return nil
}
