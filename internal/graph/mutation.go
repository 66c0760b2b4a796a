package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"blogql/internal/content"
	"blogql/internal/models"
	"blogql/internal/users"
)

type registerInput struct {
	Email    string
	Password string
	Name     *string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*userResolver, error) {
	u, err := r.users.Register(ctx, users.RegisterInput{
		Email:    args.Input.Email,
		Password: args.Input.Password,
		Name:     args.Input.Name,
	})
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
	Otp      *string
}) (*authPayloadResolver, error) {
	var otp string
	if args.Otp != nil {
		otp = *args.Otp
	}
	res, err := r.users.Login(ctx, args.Email, args.Password, otp)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{root: r, res: res}, nil
}

type updateProfileInput struct {
	Email    *string
	Password *string
	Name     *string
}

func (r *Resolver) UpdateProfile(ctx context.Context, args struct {
	ID    graphql.ID
	Input updateProfileInput
}) (*userResolver, error) {
	id, err := parseID(args.ID, "user")
	if err != nil {
		return nil, err
	}
	u, err := r.users.UpdateProfile(ctx, actor(ctx), id, users.ProfilePatch{
		Email:    args.Input.Email,
		Password: args.Input.Password,
		Name:     args.Input.Name,
	})
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	id, err := parseID(args.ID, "user")
	if err != nil {
		return nil, err
	}
	u, err := r.users.Delete(ctx, actor(ctx), id)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) SetupTwoFactor(ctx context.Context, args struct{ CurrentCode *string }) (*twoFactorSetupResolver, error) {
	var code string
	if args.CurrentCode != nil {
		code = *args.CurrentCode
	}
	e, err := r.users.SetupTwoFactor(ctx, actor(ctx), code)
	if err != nil {
		return nil, err
	}
	return &twoFactorSetupResolver{e: e}, nil
}

func (r *Resolver) EnableTwoFactor(ctx context.Context, args struct{ Code string }) (*userResolver, error) {
	u, err := r.users.EnableTwoFactor(ctx, actor(ctx), args.Code)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

type createPostInput struct {
	Title   string
	Content string
}

func (r *Resolver) CreatePost(ctx context.Context, args struct{ Input createPostInput }) (*postResolver, error) {
	p, err := r.content.CreatePost(ctx, actor(ctx), content.PostInput{
		Title:   args.Input.Title,
		Content: args.Input.Content,
	})
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

type updatePostInput struct {
	Title   *string
	Content *string
}

func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID    graphql.ID
	Input updatePostInput
}) (*postResolver, error) {
	id, err := parseID(args.ID, "post")
	if err != nil {
		return nil, err
	}
	p, err := r.content.UpdatePost(ctx, actor(ctx), id, models.PostPatch{
		Title:   args.Input.Title,
		Content: args.Input.Content,
	})
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	id, err := parseID(args.ID, "post")
	if err != nil {
		return nil, err
	}
	p, err := r.content.DeletePost(ctx, actor(ctx), id)
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

func (r *Resolver) AssignCategory(ctx context.Context, args struct {
	PostID     graphql.ID
	CategoryID graphql.ID
}) (*postResolver, error) {
	postID, err := parseID(args.PostID, "post")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(args.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	p, err := r.content.AssignCategory(ctx, actor(ctx), postID, categoryID)
	if err != nil {
		return nil, err
	}
	return r.post(p), nil
}

type createCommentInput struct {
	PostID  graphql.ID
	Content string
}

func (r *Resolver) AddComment(ctx context.Context, args struct{ Input createCommentInput }) (*commentResolver, error) {
	postID, err := parseID(args.Input.PostID, "post")
	if err != nil {
		return nil, err
	}
	c, err := r.content.CreateComment(ctx, actor(ctx), content.CommentInput{
		PostID:  postID,
		Content: args.Input.Content,
	})
	if err != nil {
		return nil, err
	}
	return r.comment(c), nil
}

func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*commentResolver, error) {
	id, err := parseID(args.ID, "comment")
	if err != nil {
		return nil, err
	}
	c, err := r.content.UpdateComment(ctx, actor(ctx), id, args.Content)
	if err != nil {
		return nil, err
	}
	return r.comment(c), nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ ID graphql.ID }) (*commentResolver, error) {
	id, err := parseID(args.ID, "comment")
	if err != nil {
		return nil, err
	}
	c, err := r.content.DeleteComment(ctx, actor(ctx), id)
	if err != nil {
		return nil, err
	}
	return r.comment(c), nil
}

func (r *Resolver) CreateCategory(ctx context.Context, args struct{ Name string }) (*categoryResolver, error) {
	c, err := r.content.CreateCategory(ctx, actor(ctx), args.Name)
	if err != nil {
		return nil, err
	}
	return r.category(c, true), nil
}

func (r *Resolver) DeleteCategory(ctx context.Context, args struct{ ID graphql.ID }) (*categoryResolver, error) {
	id, err := parseID(args.ID, "category")
	if err != nil {
		return nil, err
	}
	c, err := r.content.DeleteCategory(ctx, actor(ctx), id)
	if err != nil {
		return nil, err
	}
	// Its posts are uncategorised now.
	c.PostCount = 0
	return r.category(c, true), nil
}
