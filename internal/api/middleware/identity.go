package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/tallyledger/internal/api/apierr"
	"github.com/mcoot/tallyledger/internal/model"
)

// Identity headers
const (
	UserIDHeader = "X-Tally-User-ID"
	PinHeader    = "X-Tally-PIN"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Resolver maps a host identity id to a person or device name
type Resolver interface {
	Resolve(id string) (model.Identity, error)
}

// Identity resolves the caller from X-Tally-User-ID and attaches it as the
// acting model.Actor. A PIN in X-Tally-PIN travels with the actor.
func Identity(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(UserIDHeader)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := resolver.Resolve(id)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			actor := model.Actor{Identity: identity, PIN: r.Header.Get(PinHeader)}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor returns the acting identity from the request context
func GetActor(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(model.Actor)
	return actor, ok
}

// MustGetActor returns the acting identity or panics
func MustGetActor(ctx context.Context) model.Actor {
	actor, ok := GetActor(ctx)
	if !ok {
		panic("no actor in context - identity middleware not applied?")
	}
	return actor
}
