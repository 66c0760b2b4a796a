// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/database"
	"blogql/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	conn
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB, dialect database.Dialect) *CategoryStore {
	return &CategoryStore{conn{db: db, dialect: dialect}}
}

const categoryColumns = `c.id, c.name, c.slug, c.created_at, c.updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) findOne(ctx context.Context, op, query string, arg any) (*models.Category, error) {
	c, err := scanCategory(s.queryRow(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, `
		SELECT `+categoryColumns+`, COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id, c.name, c.slug, c.created_at, c.updated_at
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt, &c.PostCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID returns a category by its ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by id",
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id)
}

// FindByName returns the category with exactly this name. Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return s.findOne(ctx, "find category by name",
		`SELECT `+categoryColumns+` FROM categories c WHERE c.name = $1`, name)
}

// FindByPostID returns the category assigned to a post. Returns nil when
// the post has no category or does not exist.
func (s *CategoryStore) FindByPostID(ctx context.Context, postID uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by post",
		`SELECT `+categoryColumns+` FROM categories c JOIN posts p ON p.category_id = c.id WHERE p.id = $1`, postID)
}

// Create inserts a new category. A duplicate name or slug is reported as
// CONFLICT.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	c.ID = uuid.New()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO categories (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.Slug, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w",
			apperr.FromStore(err, fmt.Sprintf("category %q already exists", c.Name), "invalid reference"))
	}
	return nil
}

// Delete removes a category. Posts that referenced it become uncategorised.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("delete category: %w", err)
	} else if !ok {
		return apperr.NotFound("category", id)
	}
	return nil
}
