package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"blogql/internal/cache"
	"blogql/internal/models"
	"blogql/internal/policy"
)

// PostInput is the payload of CreatePost.
type PostInput struct {
	Title   string
	Content string
}

// SearchCriteria are the optional text and author filters of SearchPosts.
// Blank fields are ignored.
type SearchCriteria struct {
	Title    *string
	Content  *string
	AuthorID *uuid.UUID
}

// CreatePost stores a new post owned by actor.
func (s *Service) CreatePost(ctx context.Context, actor *policy.Actor, in PostInput) (*models.Post, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	body, err := validatePostContent(in.Content)
	if err != nil {
		return nil, err
	}

	p := &models.Post{Title: title, Content: body, AuthorID: actor.ID}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidatePost(ctx, p.ID, "create")

	slog.Info("post created", "post_id", p.ID, "author_id", actor.ID)
	return p, nil
}

// GetPost returns a post by ID through the read-through cache.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	key := cache.PostKey(id)
	if p, ok := cache.GetJSON[models.Post](ctx, s.cache, key); ok {
		return &p, nil
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		p, err := findOrNotFound(ctx, "post", id, s.posts.FindByID)
		if err != nil {
			return nil, err
		}
		cache.SetJSON(ctx, s.cache, key, p, cache.PostTTL)
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the pointer.
	p := *v.(*models.Post)
	return &p, nil
}

// ListPosts returns one page of all posts, newest first.
func (s *Service) ListPosts(ctx context.Context, pg models.Pagination) (*models.Page[models.Post], error) {
	pg = s.normalize(pg)
	return s.page(ctx, cache.PostsPageKey(pg), models.PostFilter{}, pg)
}

// SearchPosts returns one page of the posts matching every given
// criterion. Text criteria are substring matches. With no usable
// criteria it behaves as ListPosts.
func (s *Service) SearchPosts(ctx context.Context, c SearchCriteria, pg models.Pagination) (*models.Page[models.Post], error) {
	f := models.PostFilter{
		Title:    nonBlank(c.Title),
		Content:  nonBlank(c.Content),
		AuthorID: c.AuthorID,
	}
	return s.filtered(ctx, f, pg)
}

// ListPostsByCategory returns one page of the posts in a category.
func (s *Service) ListPostsByCategory(ctx context.Context, categoryID uuid.UUID, pg models.Pagination) (*models.Page[models.Post], error) {
	if _, err := findOrNotFound(ctx, "category", categoryID, s.categories.FindByID); err != nil {
		return nil, err
	}
	return s.filtered(ctx, models.PostFilter{CategoryID: &categoryID}, pg)
}

// ListPostsByAuthor returns one page of the posts written by a user.
func (s *Service) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, pg models.Pagination) (*models.Page[models.Post], error) {
	return s.filtered(ctx, models.PostFilter{AuthorID: &authorID}, pg)
}

func (s *Service) filtered(ctx context.Context, f models.PostFilter, pg models.Pagination) (*models.Page[models.Post], error) {
	if f.IsEmpty() {
		return s.ListPosts(ctx, pg)
	}
	f.CaseSensitive = s.opts.CaseSensitiveSearch
	pg = s.normalize(pg)
	return s.page(ctx, cache.PostsSearchKey(f, pg), f, pg)
}

// page serves a listing page from the cache, or builds it from a page
// query and a count under the same filter.
func (s *Service) page(ctx context.Context, key string, f models.PostFilter, pg models.Pagination) (*models.Page[models.Post], error) {
	if cached, ok := cache.GetJSON[models.Page[models.Post]](ctx, s.cache, key); ok {
		return &cached, nil
	}

	items, err := s.posts.List(ctx, f, pg.PageSize, pg.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &models.Page[models.Post]{
		Items:      items,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalItems: total,
	}
	cache.SetJSON(ctx, s.cache, key, out, cache.PostsPageTTL)
	s.keys.Track(cache.PostsPageClass, key)
	return out, nil
}

// UpdatePost applies patch to a post owned by actor, or any post when
// actor is an admin.
func (s *Service) UpdatePost(ctx context.Context, actor *policy.Actor, id uuid.UUID, patch models.PostPatch) (*models.Post, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		v, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &v
	}
	if patch.Content != nil {
		v, err := validatePostContent(*patch.Content)
		if err != nil {
			return nil, err
		}
		patch.Content = &v
	}

	p, err := findOrNotFound(ctx, "post", id, s.posts.FindByID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, actor); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return p, nil
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidatePost(ctx, p.ID, "update")

	slog.Info("post updated", "post_id", p.ID, "actor_id", actor.ID)
	return p, nil
}

// DeletePost removes a post and returns it as it was before deletion.
func (s *Service) DeletePost(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Post, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	p, err := findOrNotFound(ctx, "post", id, s.posts.FindByID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, actor); err != nil {
		return nil, err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.invalidatePost(ctx, id, "delete")

	slog.Info("post deleted", "post_id", id, "actor_id", actor.ID)
	return p, nil
}

// AssignCategory moves a post into a category. Any authenticated user may
// reassign any post.
func (s *Service) AssignCategory(ctx context.Context, actor *policy.Actor, postID, categoryID uuid.UUID) (*models.Post, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	p, err := findOrNotFound(ctx, "post", postID, s.posts.FindByID)
	if err != nil {
		return nil, err
	}
	if _, err := findOrNotFound(ctx, "category", categoryID, s.categories.FindByID); err != nil {
		return nil, err
	}
	if err := s.posts.SetCategory(ctx, p, &categoryID); err != nil {
		return nil, fmt.Errorf("assign category: %w", err)
	}
	s.invalidatePost(ctx, p.ID, "assign_category")

	slog.Info("post category assigned", "post_id", p.ID, "category_id", categoryID, "actor_id", actor.ID)
	return p, nil
}

// invalidatePost drops the cached post and every listing page, then
// records the invalidation.
func (s *Service) invalidatePost(ctx context.Context, id uuid.UUID, action string) {
	cache.Invalidate(ctx, s.cache, cache.PostKey(id))
	s.keys.Invalidate(ctx, cache.PostsPageClass)
	if s.audit != nil {
		s.audit.Log(ctx, "post", id, action)
	}
}

func nonBlank(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
