// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content is the service layer for posts, comments and categories.
// It validates input, applies the authorization policy, keeps the side
// cache coherent on writes and announces new comments on the bus.
package content

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"blogql/internal/apperr"
	"blogql/internal/cache"
	"blogql/internal/models"
)

// PostRepository persists posts. Finders return nil, nil when nothing matches.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, f models.PostFilter, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, f models.PostFilter) (int, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	SetCategory(ctx context.Context, p *models.Post, categoryID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByPostID(ctx context.Context, postID uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvalidationLog records cache invalidations for auditing. Implementations
// must not fail the caller.
type InvalidationLog interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// Publisher announces events to live subscribers.
type Publisher interface {
	Publish(topic string, payload any)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Posts      PostRepository
	Comments   CommentRepository
	Categories CategoryRepository
	Cache      cache.Store
	Audit      InvalidationLog
	Bus        Publisher
}

// Options tune listing and search behaviour.
type Options struct {
	// MaxPageSize caps requested page sizes. Zero means no cap.
	MaxPageSize int
	// CaseSensitiveSearch switches text criteria to exact-case matching.
	CaseSensitiveSearch bool
}

// Service implements the content operations.
type Service struct {
	posts      PostRepository
	comments   CommentRepository
	categories CategoryRepository
	cache      cache.Store
	keys       *cache.KeyRegistry
	audit      InvalidationLog
	bus        Publisher
	opts       Options

	// loads collapses concurrent cache misses for one post.
	loads singleflight.Group
}

// New creates a Service.
func New(d Deps, opts Options) *Service {
	keys := cache.NewKeyRegistry(d.Cache)
	keys.Register(cache.PostsPageClass, cache.PostsPagePatterns...)

	return &Service{
		posts:      d.Posts,
		comments:   d.Comments,
		categories: d.Categories,
		cache:      d.Cache,
		keys:       keys,
		audit:      d.Audit,
		bus:        d.Bus,
		opts:       opts,
	}
}

// findOrNotFound turns a nil lookup result into NOT_FOUND.
func findOrNotFound[T any](ctx context.Context, entity string, id uuid.UUID,
	find func(context.Context, uuid.UUID) (*T, error)) (*T, error) {
	v, err := find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound(entity, id)
	}
	return v, nil
}

// normalize clamps pagination and applies the page-size cap.
func (s *Service) normalize(p models.Pagination) models.Pagination {
	return p.Normalize(s.opts.MaxPageSize)
}
