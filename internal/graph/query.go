package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"blogql/internal/content"
)

// Me returns the authenticated user, or null for anonymous requests.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	a := actor(ctx)
	if a == nil {
		return nil, nil
	}
	u, err := r.users.Get(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	id, err := parseID(args.ID, "user")
	if err != nil {
		return nil, err
	}
	u, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) Post(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	id, err := parseID(args.ID, "post")
	if err != nil {
		return nil, err
	}
	p, err := r.content.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) Posts(ctx context.Context, args pageArgs) (*postPageResolver, error) {
	page, err := r.content.ListPosts(ctx, pagination(args.Page, args.PageSize))
	if err != nil {
		return nil, err
	}
	return r.postPage(page), nil
}

type searchPostsInput struct {
	Title    *string
	Content  *string
	AuthorID *graphql.ID
}

func (r *Resolver) SearchPosts(ctx context.Context, args struct {
	Criteria searchPostsInput
	Page     *int32
	PageSize *int32
}) (*postPageResolver, error) {
	criteria := content.SearchCriteria{
		Title:   args.Criteria.Title,
		Content: args.Criteria.Content,
	}
	if args.Criteria.AuthorID != nil {
		id, err := parseID(*args.Criteria.AuthorID, "author")
		if err != nil {
			return nil, err
		}
		criteria.AuthorID = &id
	}

	page, err := r.content.SearchPosts(ctx, criteria, pagination(args.Page, args.PageSize))
	if err != nil {
		return nil, err
	}
	return r.postPage(page), nil
}

func (r *Resolver) PostsByCategory(ctx context.Context, args struct {
	CategoryID graphql.ID
	Page       *int32
	PageSize   *int32
}) (*postPageResolver, error) {
	id, err := parseID(args.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	page, err := r.content.ListPostsByCategory(ctx, id, pagination(args.Page, args.PageSize))
	if err != nil {
		return nil, err
	}
	return r.postPage(page), nil
}

func (r *Resolver) Comment(ctx context.Context, args struct{ ID graphql.ID }) (*commentResolver, error) {
	id, err := parseID(args.ID, "comment")
	if err != nil {
		return nil, err
	}
	c, err := r.content.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.comment(c), nil
}

func (r *Resolver) Comments(ctx context.Context, args struct{ PostID graphql.ID }) ([]*commentResolver, error) {
	id, err := parseID(args.PostID, "post")
	if err != nil {
		return nil, err
	}
	list, err := r.content.CommentsByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.comments(list), nil
}

func (r *Resolver) Category(ctx context.Context, args struct{ ID graphql.ID }) (*categoryResolver, error) {
	id, err := parseID(args.ID, "category")
	if err != nil {
		return nil, err
	}
	c, err := r.content.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.category(c, false), nil
}

func (r *Resolver) Categories(ctx context.Context) ([]*categoryResolver, error) {
	list, err := r.content.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*categoryResolver, len(list))
	for i := range list {
		out[i] = r.category(&list[i], true)
	}
	return out, nil
}

func (r *Resolver) CategoryByName(ctx context.Context, args struct{ Name string }) (*categoryResolver, error) {
	c, err := r.content.CategoryByName(ctx, args.Name)
	if err != nil {
		return nil, err
	}
	return r.category(c, false), nil
}

// CategoryByPost returns null when the post has no category.
func (r *Resolver) CategoryByPost(ctx context.Context, args struct{ PostID graphql.ID }) (*categoryResolver, error) {
	id, err := parseID(args.PostID, "post")
	if err != nil {
		return nil, err
	}
	c, err := r.content.CategoryByPost(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return r.category(c, false), nil
}
