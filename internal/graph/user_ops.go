package graph

import (
	"github.com/graphql-go/graphql"
)

func (r *Resolver) userOperations() []Operation {
	credentials := graphql.FieldConfigArgument{
		"options": &graphql.ArgumentConfig{Type: graphql.NewNonNull(usernamePasswordInput)},
	}

	return []Operation{
		{
			Name:        "me",
			Kind:        Query,
			Description: "The user bound to the current session.",
			Type:        userType,
			Handler:     r.me,
		},
		{
			Name:    "users",
			Kind:    Query,
			Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
			Handler: r.users,
		},
		{
			Name:    "user",
			Kind:    Query,
			Type:    userType,
			Args:    graphql.FieldConfigArgument{"id": idArgument()},
			Handler: r.user,
		},
		{
			Name:        "register",
			Kind:        Mutation,
			Description: "Create an account and log in.",
			Type:        graphql.NewNonNull(userResponseType),
			Args:        credentials,
			Handler:     r.register,
		},
		{
			Name:    "login",
			Kind:    Mutation,
			Type:    graphql.NewNonNull(userResponseType),
			Args:    credentials,
			Handler: r.login,
		},
		{
			Name: "updateUser",
			Kind: Mutation,
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"id":       idArgument(),
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Handler: r.updateUser,
		},
		{
			Name:    "deleteUser",
			Kind:    Mutation,
			Type:    graphql.NewNonNull(graphql.Boolean),
			Args:    graphql.FieldConfigArgument{"id": idArgument()},
			Handler: r.deleteUser,
		},
	}
}

func credentialsArg(p graphql.ResolveParams) (username, password string) {
	opts, _ := p.Args["options"].(map[string]interface{})
	username, _ = opts["username"].(string)
	password, _ = opts["password"].(string)
	return username, password
}

func (r *Resolver) me(rc *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	user, err := r.Users.Me(p.Context, rc.UserID())
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) users(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	return r.Users.Users(p.Context)
}

func (r *Resolver) user(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return nil, nil
	}
	user, err := r.Users.User(p.Context, id)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) register(rc *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	if err := r.allow(rc, p, "register"); err != nil {
		return nil, err
	}
	username, password := credentialsArg(p)
	resp, mut, err := r.Users.Register(p.Context, username, password)
	if err != nil {
		return nil, err
	}
	rc.Record(mut)
	return resp, nil
}

func (r *Resolver) login(rc *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	if err := r.allow(rc, p, "login"); err != nil {
		return nil, err
	}
	username, password := credentialsArg(p)
	resp, mut, err := r.Users.Login(p.Context, username, password)
	if err != nil {
		return nil, err
	}
	rc.Record(mut)
	return resp, nil
}

func (r *Resolver) updateUser(rc *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return nil, nil
	}
	password, _ := stringArg(p, "password")
	user, err := r.Users.UpdateUser(p.Context, rc.UserID(), id, password)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) deleteUser(rc *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return false, nil
	}
	deleted, mut, err := r.Users.DeleteUser(p.Context, rc.UserID(), id)
	if err != nil {
		return nil, err
	}
	rc.Record(mut)
	return deleted, nil
}
