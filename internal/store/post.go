// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/database"
	"blogql/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	conn
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB, dialect database.Dialect) *PostStore {
	return &PostStore{conn{db: db, dialect: dialect}}
}

const postColumns = `id, title, content, author_id, category_id, created_at, updated_at`

// postOrder keeps pages stable when timestamps collide.
const postOrder = ` ORDER BY created_at DESC, id DESC`

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// whereClause builds the predicate for a filter. List and Count both call
// it, so a page and its total can never disagree. Text criteria are
// substring matches; the position function differs per dialect.
func (s *PostStore) whereClause(f models.PostFilter) (string, []any) {
	strpos := "strpos"
	if s.dialect == database.SQLite {
		strpos = "instr"
	}

	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	contains := func(col, needle string) string {
		if f.CaseSensitive {
			return fmt.Sprintf("%s(%s, %s) > 0", strpos, col, next(needle))
		}
		lower := s.dialect.LowerFunc()
		return fmt.Sprintf("%s(%s(%s), %s(%s)) > 0", strpos, lower, col, lower, next(needle))
	}

	if f.Title != "" {
		conds = append(conds, contains("title", f.Title))
	}
	if f.Content != "" {
		conds = append(conds, contains("content", f.Content))
	}
	if f.AuthorID != nil {
		conds = append(conds, "author_id = "+next(*f.AuthorID))
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = "+next(*f.CategoryID))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of posts matching the filter, newest first.
func (s *PostStore) List(ctx context.Context, f models.PostFilter, limit, offset int) ([]models.Post, error) {
	where, args := s.whereClause(f)
	n := len(args)
	query := `SELECT ` + postColumns + ` FROM posts` + where + postOrder +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, offset)

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of posts matching the filter.
func (s *PostStore) Count(ctx context.Context, f models.PostFilter) (int, error) {
	where, args := s.whereClause(f)
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post. ID and timestamps are assigned here.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	p.ID = uuid.New()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO posts (id, title, content, author_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Title, p.Content, p.AuthorID, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w",
			apperr.FromStore(err, "post already exists", "author or category does not exist"))
	}
	return nil
}

// Update saves a post's title and content.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = now()
	res, err := s.exec(ctx, `
		UPDATE posts SET title = $1, content = $2, updated_at = $3 WHERE id = $4
	`, p.Title, p.Content, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("update post: %w", err)
	} else if !ok {
		return apperr.NotFound("post", p.ID)
	}
	return nil
}

// SetCategory assigns a category to a post, or clears it when categoryID
// is nil.
func (s *PostStore) SetCategory(ctx context.Context, p *models.Post, categoryID *uuid.UUID) error {
	ts := now()
	res, err := s.exec(ctx, `
		UPDATE posts SET category_id = $1, updated_at = $2 WHERE id = $3
	`, categoryID, ts, p.ID)
	if err != nil {
		return fmt.Errorf("set post category: %w",
			apperr.FromStore(err, "post already exists", "category does not exist"))
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("set post category: %w", err)
	} else if !ok {
		return apperr.NotFound("post", p.ID)
	}
	p.CategoryID = categoryID
	p.UpdatedAt = ts
	return nil
}

// Delete removes a post and, through the foreign key, its comments.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("delete post: %w", err)
	} else if !ok {
		return apperr.NotFound("post", id)
	}
	return nil
}
