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

// UserStore handles all user-related database operations.
type UserStore struct {
	conn
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB, dialect database.Dialect) *UserStore {
	return &UserStore{conn{db: db, dialect: dialect}}
}

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.name, u.role_id, r.name,
	       u.totp_secret, u.totp_enabled, u.created_at, u.updated_at
	FROM users u JOIN roles r ON r.id = u.role_id`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.RoleID, &u.Role,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, userSelect+` WHERE u.email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, userSelect+` ORDER BY u.created_at ASC, u.id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user. The caller supplies the password hash and the
// role id; ID and timestamps are assigned here. A duplicate email is
// reported as CONFLICT.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role_id, totp_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.RoleID, u.TOTPEnabled, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w",
			apperr.FromStore(err, "email is already registered", "role does not exist"))
	}
	return nil
}

// Update saves the user's email, name and password hash.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = now()
	res, err := s.exec(ctx, `
		UPDATE users SET email = $1, name = $2, password_hash = $3, updated_at = $4
		WHERE id = $5
	`, u.Email, u.Name, u.PasswordHash, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w",
			apperr.FromStore(err, "email is already registered", "invalid reference"))
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("update user: %w", err)
	} else if !ok {
		return apperr.NotFound("user", u.ID)
	}
	return nil
}

// Delete removes a user. Their posts and comments go with them.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("delete user: %w", err)
	} else if !ok {
		return apperr.NotFound("user", id)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
// 2FA stays disabled until EnableTOTP confirms a code.
func (s *UserStore) SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	_, err := s.exec(ctx, `
		UPDATE users SET totp_secret = $1, totp_enabled = FALSE, updated_at = $2 WHERE id = $3
	`, secret, now(), userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as enabled after the user confirms a valid code.
func (s *UserStore) EnableTOTP(ctx context.Context, userID uuid.UUID) error {
	_, err := s.exec(ctx, `
		UPDATE users SET totp_enabled = TRUE, updated_at = $1 WHERE id = $2
	`, now(), userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}
