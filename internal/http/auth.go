package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/log"
)

// APIKeyHeader carries the caller's key on every /api request.
const APIKeyHeader = "X-API-KEY"

type ownerContextKey struct{}

// KeyResolver maps an API key to the owner it was issued to.
type KeyResolver interface {
	Resolve(ctx context.Context, key string) (core.Owner, bool)
}

// StaticKeys resolves keys from a fixed key -> owner table.
type StaticKeys map[string]string

func (s StaticKeys) Resolve(_ context.Context, key string) (core.Owner, bool) {
	// Compare against every entry so lookup time does not depend on the key.
	var owner string
	for k, o := range s {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			owner = o
		}
	}
	return core.Owner(owner), owner != ""
}

// WithOwner returns a copy of ctx carrying the resolved caller identity.
func WithOwner(ctx context.Context, owner core.Owner) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, owner)
}

// OwnerFromContext returns the caller identity set by the API key middleware.
func OwnerFromContext(ctx context.Context) (core.Owner, bool) {
	owner, ok := ctx.Value(ownerContextKey{}).(core.Owner)
	return owner, ok && owner != ""
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			ErrorResponse(http.StatusUnauthorized, "Missing "+APIKeyHeader).Write(w)
			return
		}

		owner, ok := s.keys.Resolve(r.Context(), key)
		if !ok {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
				WarnContext(r.Context(), "Rejected unknown API key", log.FieldClientIP, extractClientIP(r))
			ErrorResponse(http.StatusUnauthorized, "Invalid API key").Write(w)
			return
		}

		ctx := WithOwner(r.Context(), owner)
		ctx = log.IntoContext(ctx, log.FromContext(ctx).With(log.FieldOwner, string(owner)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
