package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned when session-scoped APIs are used without a store.
var ErrNoSession = errors.New("no active session: bind a session.Store before using component bindings")

type contextKey struct{}

// NewContext returns a copy of ctx carrying store.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the store bound to ctx.
func FromContext(ctx context.Context) (*Store, error) {
	store, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || store == nil {
		return nil, ErrNoSession
	}
	return store, nil
}
