package graph

import (
	"context"

	"github.com/graphql-go/graphql"
)

// Request is the JSON body accepted on the GraphQL endpoint.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Execute runs req against schema with rc available to every handler.
func Execute(ctx context.Context, schema graphql.Schema, rc *RequestContext, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        WithRequestContext(ctx, rc),
	})
}
