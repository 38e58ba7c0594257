package graph

import (
	"context"

	"lireddit/internal/middleware"
	"lireddit/internal/service"

	"github.com/graphql-go/graphql"
)

// RateLimiter is satisfied by middleware.Limiter.
type RateLimiter interface {
	Allow(ctx context.Context, resource, id string) bool
}

var _ RateLimiter = (*middleware.Limiter)(nil)

// Resolver holds the services behind the registered operations.
type Resolver struct {
	Users   *service.UserService
	Posts   *service.PostService
	Limiter RateLimiter
}

// Operations returns the full registry: the user operations followed by the
// post operations.
func (r *Resolver) Operations() []Operation {
	ops := r.userOperations()
	return append(ops, r.postOperations()...)
}

func (r *Resolver) allow(rc *RequestContext, p graphql.ResolveParams, resource string) error {
	if r.Limiter == nil {
		return nil
	}
	if !r.Limiter.Allow(p.Context, resource, rc.IP) {
		return ErrRateLimited
	}
	return nil
}

// idArg reads a non-null Int argument. Ids below 1 never match a row.
func idArg(p graphql.ResolveParams, name string) (uint, bool) {
	v, ok := p.Args[name].(int)
	if !ok || v < 1 {
		return 0, false
	}
	return uint(v), true
}

func stringArg(p graphql.ResolveParams, name string) (string, bool) {
	v, ok := p.Args[name].(string)
	return v, ok
}

func idArgument() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
}
