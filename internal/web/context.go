// Package web is the HTTP surface: chi router, session-aware middleware, and
// the server-rendered pages for marketing, auth, booking, and dashboards.
package web

import (
	"context"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/session"
)

type ctxKey int

const (
	ctxSession ctxKey = iota
	ctxUser
)

// SessionFrom returns the session record attached to the request, if any.
func SessionFrom(ctx context.Context) *session.Record {
	rec, _ := ctx.Value(ctxSession).(*session.Record)
	return rec
}

// UserFrom returns the authenticated user attached to the request, if any.
func UserFrom(ctx context.Context) *backend.User {
	user, _ := ctx.Value(ctxUser).(*backend.User)
	return user
}

func withSession(ctx context.Context, rec *session.Record) context.Context {
	return context.WithValue(ctx, ctxSession, rec)
}

func withUser(ctx context.Context, user *backend.User) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}
