package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"blogql/internal/auth"
	"blogql/internal/models"
	"blogql/internal/users"
)

type roleResolver struct {
	r models.Role
}

func (r *roleResolver) ID() graphql.ID          { return toID(r.r.ID) }
func (r *roleResolver) Name() string            { return string(r.r.Name) }
func (r *roleResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.r.CreatedAt} }

type userResolver struct {
	root *Resolver
	u    models.User
}

func (r *Resolver) user(u *models.User) *userResolver {
	return &userResolver{root: r, u: *u}
}

func (u *userResolver) ID() graphql.ID          { return toID(u.u.ID) }
func (u *userResolver) Email() string           { return u.u.Email }
func (u *userResolver) Name() *string           { return u.u.Name }
func (u *userResolver) TwoFactorEnabled() bool  { return u.u.TOTPEnabled }
func (u *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: u.u.CreatedAt} }
func (u *userResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: u.u.UpdatedAt} }

func (u *userResolver) Role(ctx context.Context) (*roleResolver, error) {
	role, err := u.root.users.Role(ctx, u.u.RoleID)
	if err != nil {
		return nil, err
	}
	return &roleResolver{r: *role}, nil
}

func (u *userResolver) Posts(ctx context.Context, args pageArgs) (*postPageResolver, error) {
	page, err := u.root.content.ListPostsByAuthor(ctx, u.u.ID, pagination(args.Page, args.PageSize))
	if err != nil {
		return nil, err
	}
	return u.root.postPage(page), nil
}

func (u *userResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	list, err := u.root.content.CommentsByAuthor(ctx, u.u.ID)
	if err != nil {
		return nil, err
	}
	return u.root.comments(list), nil
}

type postResolver struct {
	root *Resolver
	p    models.Post
}

func (r *Resolver) post(p *models.Post) *postResolver {
	return &postResolver{root: r, p: *p}
}

func (p *postResolver) ID() graphql.ID          { return toID(p.p.ID) }
func (p *postResolver) Title() string           { return p.p.Title }
func (p *postResolver) Content() string         { return p.p.Content }
func (p *postResolver) CreatedAt() graphql.Time { return graphql.Time{Time: p.p.CreatedAt} }
func (p *postResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: p.p.UpdatedAt} }

func (p *postResolver) Author(ctx context.Context) (*userResolver, error) {
	u, err := p.root.users.Get(ctx, p.p.AuthorID)
	if err != nil {
		return nil, err
	}
	return p.root.user(u), nil
}

func (p *postResolver) Category(ctx context.Context) (*categoryResolver, error) {
	if p.p.CategoryID == nil {
		return nil, nil
	}
	c, err := p.root.content.CategoryByPost(ctx, p.p.ID)
	if err != nil || c == nil {
		return nil, err
	}
	return p.root.category(c, false), nil
}

func (p *postResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	list, err := p.root.content.CommentsByPost(ctx, p.p.ID)
	if err != nil {
		return nil, err
	}
	return p.root.comments(list), nil
}

type postPageResolver struct {
	root *Resolver
	page *models.Page[models.Post]
}

func (r *Resolver) postPage(page *models.Page[models.Post]) *postPageResolver {
	return &postPageResolver{root: r, page: page}
}

func (pp *postPageResolver) Items() []*postResolver {
	out := make([]*postResolver, len(pp.page.Items))
	for i := range pp.page.Items {
		out[i] = pp.root.post(&pp.page.Items[i])
	}
	return out
}

func (pp *postPageResolver) Page() int32       { return int32(pp.page.Page) }
func (pp *postPageResolver) PageSize() int32   { return int32(pp.page.PageSize) }
func (pp *postPageResolver) TotalItems() int32 { return int32(pp.page.TotalItems) }
func (pp *postPageResolver) TotalPages() int32 { return int32(pp.page.TotalPages()) }

type commentResolver struct {
	root *Resolver
	c    models.Comment
}

func (r *Resolver) comment(c *models.Comment) *commentResolver {
	return &commentResolver{root: r, c: *c}
}

func (r *Resolver) comments(list []models.Comment) []*commentResolver {
	out := make([]*commentResolver, len(list))
	for i := range list {
		out[i] = r.comment(&list[i])
	}
	return out
}

func (c *commentResolver) ID() graphql.ID          { return toID(c.c.ID) }
func (c *commentResolver) Content() string         { return c.c.Content }
func (c *commentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: c.c.CreatedAt} }
func (c *commentResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: c.c.UpdatedAt} }

func (c *commentResolver) Author(ctx context.Context) (*userResolver, error) {
	u, err := c.root.users.Get(ctx, c.c.AuthorID)
	if err != nil {
		return nil, err
	}
	return c.root.user(u), nil
}

func (c *commentResolver) Post(ctx context.Context) (*postResolver, error) {
	p, err := c.root.content.GetPost(ctx, c.c.PostID)
	if err != nil {
		return nil, err
	}
	return c.root.post(p), nil
}

type categoryResolver struct {
	root *Resolver
	c    models.Category
	// counted is set when c.PostCount came from the listing query.
	counted bool
}

func (r *Resolver) category(c *models.Category, counted bool) *categoryResolver {
	return &categoryResolver{root: r, c: *c, counted: counted}
}

func (c *categoryResolver) ID() graphql.ID          { return toID(c.c.ID) }
func (c *categoryResolver) Name() string            { return c.c.Name }
func (c *categoryResolver) Slug() string            { return c.c.Slug }
func (c *categoryResolver) CreatedAt() graphql.Time { return graphql.Time{Time: c.c.CreatedAt} }
func (c *categoryResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: c.c.UpdatedAt} }

func (c *categoryResolver) PostCount(ctx context.Context) (int32, error) {
	if c.counted {
		return int32(c.c.PostCount), nil
	}
	page, err := c.root.content.ListPostsByCategory(ctx, c.c.ID, models.Pagination{Page: 1, PageSize: 1})
	if err != nil {
		return 0, err
	}
	return int32(page.TotalItems), nil
}

func (c *categoryResolver) Posts(ctx context.Context, args pageArgs) (*postPageResolver, error) {
	page, err := c.root.content.ListPostsByCategory(ctx, c.c.ID, pagination(args.Page, args.PageSize))
	if err != nil {
		return nil, err
	}
	return c.root.postPage(page), nil
}

type authPayloadResolver struct {
	root *Resolver
	res  *users.LoginResult
}

func (a *authPayloadResolver) Token() string       { return a.res.Token }
func (a *authPayloadResolver) User() *userResolver { return a.root.user(a.res.User) }

type twoFactorSetupResolver struct {
	e *auth.TOTPEnrollment
}

func (t *twoFactorSetupResolver) Secret() string     { return t.e.Secret }
func (t *twoFactorSetupResolver) OtpauthURL() string { return t.e.URL }
func (t *twoFactorSetupResolver) QRCode() string     { return t.e.QRCode }
