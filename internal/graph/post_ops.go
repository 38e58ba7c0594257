package graph

import (
	"github.com/graphql-go/graphql"
)

func (r *Resolver) postOperations() []Operation {
	return []Operation{
		{
			Name:    "posts",
			Kind:    Query,
			Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
			Handler: r.posts,
		},
		{
			Name:    "post",
			Kind:    Query,
			Type:    postType,
			Args:    graphql.FieldConfigArgument{"id": idArgument()},
			Handler: r.post,
		},
		{
			Name:    "createPost",
			Kind:    Mutation,
			Type:    graphql.NewNonNull(postType),
			Args:    graphql.FieldConfigArgument{"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}},
			Handler: r.createPost,
		},
		{
			Name:        "updatePost",
			Kind:        Mutation,
			Description: "Rename a post. Omitting title leaves it unchanged.",
			Type:        postType,
			Args: graphql.FieldConfigArgument{
				"id":    idArgument(),
				"title": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Handler: r.updatePost,
		},
		{
			Name:    "deletePost",
			Kind:    Mutation,
			Type:    graphql.NewNonNull(graphql.Boolean),
			Args:    graphql.FieldConfigArgument{"id": idArgument()},
			Handler: r.deletePost,
		},
	}
}

func (r *Resolver) posts(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	return r.Posts.Posts(p.Context)
}

func (r *Resolver) post(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return nil, nil
	}
	post, err := r.Posts.Post(p.Context, id)
	if err != nil || post == nil {
		return nil, err
	}
	return post, nil
}

func (r *Resolver) createPost(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	title, _ := stringArg(p, "title")
	return r.Posts.CreatePost(p.Context, title)
}

func (r *Resolver) updatePost(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return nil, nil
	}
	var title *string
	if v, present := stringArg(p, "title"); present {
		title = &v
	}
	post, err := r.Posts.UpdatePost(p.Context, id, title)
	if err != nil || post == nil {
		return nil, err
	}
	return post, nil
}

func (r *Resolver) deletePost(_ *RequestContext, p graphql.ResolveParams) (interface{}, error) {
	id, ok := idArg(p, "id")
	if !ok {
		return false, nil
	}
	return r.Posts.DeletePost(p.Context, id), nil
}
