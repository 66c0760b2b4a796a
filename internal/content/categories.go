package content

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/cache"
	"blogql/internal/models"
	"blogql/internal/policy"
	"blogql/internal/slug"
)

// CreateCategory adds a category. Only admins may create categories; a
// duplicate name is a CONFLICT.
func (s *Service) CreateCategory(ctx context.Context, actor *policy.Actor, name string) (*models.Category, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("category %q already exists", name)
	}

	// Only names are unique. When another name already produced the same
	// slug, retry once with a slug suffixed by a fingerprint of the name.
	c := &models.Category{Name: name, Slug: slug.WithFallback(name, "category")}
	err = s.categories.Create(ctx, c)
	if apperr.IsKind(err, apperr.KindConflict) {
		c.Slug = slug.WithSuffix(name, "category")
		err = s.categories.Create(ctx, c)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("category created", "category_id", c.ID, "name", c.Name, "actor_id", actor.ID)
	return c, nil
}

// GetCategory returns a category by ID.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findOrNotFound(ctx, "category", id, s.categories.FindByID)
}

// CategoryByName returns the category with the given name.
func (s *Service) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	c, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, "category %q not found", name)
	}
	return c, nil
}

// CategoryByPost returns the category of a post, or nil when the post is
// uncategorised.
func (s *Service) CategoryByPost(ctx context.Context, postID uuid.UUID) (*models.Category, error) {
	return s.categories.FindByPostID(ctx, postID)
}

// ListCategories returns every category with its post count.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// DeleteCategory removes a category. Its posts stay, uncategorised. Only
// admins may delete categories.
func (s *Service) DeleteCategory(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Category, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := findOrNotFound(ctx, "category", id, s.categories.FindByID)
	if err != nil {
		return nil, err
	}

	f := models.PostFilter{CategoryID: &id}
	n, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	affected, err := s.posts.List(ctx, f, n, 0)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(affected))
	for _, p := range affected {
		keys = append(keys, cache.PostKey(p.ID))
	}
	cache.Invalidate(ctx, s.cache, keys...)
	s.keys.Invalidate(ctx, cache.PostsPageClass)
	if s.audit != nil {
		s.audit.Log(ctx, "category", id, "delete")
	}

	slog.Info("category deleted", "category_id", id, "posts", len(affected), "actor_id", actor.ID)
	return c, nil
}
