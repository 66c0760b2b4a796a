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

	"blogql/internal/database"
	"blogql/internal/models"
)

// RoleStore reads the roles table. Roles are written only by the seed step.
type RoleStore struct {
	conn
}

// NewRoleStore returns a new RoleStore.
func NewRoleStore(db *sql.DB, dialect database.Dialect) *RoleStore {
	return &RoleStore{conn{db: db, dialect: dialect}}
}

// FindByName returns the role with the given name, or nil if not found.
func (s *RoleStore) FindByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	return s.findOne(ctx, `SELECT id, name, created_at FROM roles WHERE name = $1`, string(name))
}

// FindByID returns the role with the given id, or nil if not found.
func (s *RoleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.findOne(ctx, `SELECT id, name, created_at FROM roles WHERE id = $1`, id)
}

func (s *RoleStore) findOne(ctx context.Context, query string, arg any) (*models.Role, error) {
	var r models.Role
	err := s.queryRow(ctx, query, arg).Scan(&r.ID, &r.Name, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &r, nil
}

// List returns all roles ordered by name.
func (s *RoleStore) List(ctx context.Context) ([]models.Role, error) {
	rows, err := s.query(ctx, `SELECT id, name, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
