package graph

import (
	"errors"
	"fmt"
	"log/slog"

	"lireddit/internal/middleware"
	"lireddit/internal/models"
	"lireddit/internal/observability"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
)

// Kind selects the root type an operation is attached to.
type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// HandlerFunc resolves one root field.
type HandlerFunc func(rc *RequestContext, p graphql.ResolveParams) (interface{}, error)

// Operation is one entry of the schema registry.
type Operation struct {
	Name        string
	Kind        Kind
	Description string
	Type        graphql.Output
	Args        graphql.FieldConfigArgument
	Handler     HandlerFunc
}

var (
	// ErrRateLimited is returned when a client exceeds the login/register limit.
	ErrRateLimited = errors.New("too many requests, try again later")

	errMissingRequestContext = errors.New("missing request context")
	errInternal              = errors.New("internal server error")
)

// NewSchema builds the query and mutation roots from r's operations.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	return buildSchema(r.Operations())
}

func buildSchema(ops []Operation) (graphql.Schema, error) {
	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	seen := make(map[string]Kind, len(ops))

	for _, op := range ops {
		if op.Name == "" || op.Handler == nil || op.Type == nil {
			return graphql.Schema{}, fmt.Errorf("operation %q is incomplete", op.Name)
		}
		if prev, dup := seen[op.Name]; dup {
			return graphql.Schema{}, fmt.Errorf("duplicate operation %q (already registered as %s)", op.Name, prev)
		}
		seen[op.Name] = op.Kind

		field := &graphql.Field{
			Name:        op.Name,
			Type:        op.Type,
			Args:        op.Args,
			Description: op.Description,
			Resolve:     wrap(op),
		}
		if op.Kind == Mutation {
			mutations[op.Name] = field
		} else {
			queries[op.Name] = field
		}
	}

	if len(queries) == 0 {
		return graphql.Schema{}, errors.New("schema has no queries")
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
	}
	if len(mutations) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations})
	}
	return graphql.NewSchema(cfg)
}

// wrap adapts a HandlerFunc to graphql-go: it fetches the RequestContext,
// records a span and metrics, and hides internal error details.
func wrap(op Operation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		rc := FromContext(p.Context)
		if rc == nil {
			return nil, errMissingRequestContext
		}

		ctx, span := observability.StartSpan(p.Context, "graphql."+op.Name,
			attribute.String("graphql.operation.type", op.Kind.String()),
		)
		p.Context = ctx

		result, err := op.Handler(rc, p)
		observability.EndSpan(span, err)

		if err != nil {
			middleware.GraphQLOperations.WithLabelValues(op.Name, "error").Inc()
			return nil, publicError(p, op.Name, err)
		}
		middleware.GraphQLOperations.WithLabelValues(op.Name, "ok").Inc()
		return result, nil
	}
}

// publicError passes through errors meant for clients and replaces the rest.
func publicError(p graphql.ResolveParams, name string, err error) error {
	if errors.Is(err, ErrRateLimited) {
		return err
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation, models.CodeUnauthorized, models.CodeForbidden, models.CodeConflict:
			return errors.New(appErr.Message)
		}
	}

	middleware.Logger.ErrorContext(p.Context, "GraphQL operation failed",
		slog.String("operation", name),
		slog.String("error", err.Error()),
	)
	return errInternal
}
