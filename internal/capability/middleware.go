package capability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talentvault/talentvault/internal/shared"
)

// ActorResolver turns an authenticated account ID into an Actor.
type ActorResolver interface {
	ResolveActor(ctx context.Context, accountID int64) (Actor, error)
}

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor placed by the middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Middleware wires capability checks into HTTP handlers. The actor is
// resolved once per request from the session and carried in context.
type Middleware struct {
	Resolver ActorResolver
	Logger   *slog.Logger
}

// ResolveActor loads the session user and attaches the Actor to context.
// Requests without an authenticated session are rejected.
func (m Middleware) ResolveActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := m.currentAccountID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		actor, err := m.Resolver.ResolveActor(r.Context(), accountID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve actor", slog.Int64("account_id", accountID), slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireAny ensures the actor holds at least one of the tokens.
func (m Middleware) RequireAny(tokens ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !HasAnyCapability(actor, tokens...) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentAccountID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session account id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
