// Package graph declares the GraphQL schema as an operation registry and
// executes requests against it.
package graph

import (
	"context"
	"sync"

	"lireddit/internal/session"
)

type requestContextKey struct{}

// RequestContext is built once per HTTP request and handed to every
// operation handler. Handlers record session changes here; the transport
// applies them after execution.
type RequestContext struct {
	Session *session.Session
	IP      string

	mu        sync.Mutex
	userID    *uint
	mutations []session.Mutation
}

// NewRequestContext seeds the authenticated user from sess.
func NewRequestContext(sess *session.Session, ip string) *RequestContext {
	if sess == nil {
		sess = &session.Session{}
	}
	rc := &RequestContext{Session: sess, IP: ip}
	if id, ok := sess.UserID(); ok {
		rc.userID = &id
	}
	return rc
}

// UserID returns the authenticated user id as seen by this request,
// including mutations recorded earlier in the same operation.
func (rc *RequestContext) UserID() *uint {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.userID == nil {
		return nil
	}
	id := *rc.userID
	return &id
}

// Record queues m for the transport. Zero mutations are dropped.
func (rc *RequestContext) Record(m session.Mutation) {
	if m.IsZero() {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.mutations = append(rc.mutations, m)
	switch m.Kind {
	case session.MutationSetUserID:
		id := m.UserID
		rc.userID = &id
	case session.MutationClear:
		rc.userID = nil
	}
}

// Mutations returns the recorded session mutations in order.
func (rc *RequestContext) Mutations() []session.Mutation {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]session.Mutation, len(rc.mutations))
	copy(out, rc.mutations)
	return out
}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}
