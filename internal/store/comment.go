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

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	conn
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB, dialect database.Dialect) *CommentStore {
	return &CommentStore{conn{db: db, dialect: dialect}}
}

const commentColumns = `id, content, author_id, post_id, created_at, updated_at`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) list(ctx context.Context, op, query string, arg any) ([]models.Comment, error) {
	rows, err := s.query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListByPost returns every comment on a post, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.list(ctx, "list comments by post",
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id`, postID)
}

// ListByAuthor returns every comment written by a user, newest first.
func (s *CommentStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Comment, error) {
	return s.list(ctx, "list comments by author",
		`SELECT `+commentColumns+` FROM comments WHERE author_id = $1 ORDER BY created_at DESC, id`, authorID)
}

// FindByID retrieves a comment by its UUID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.queryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a new comment. A post deleted between the existence check
// and the insert surfaces as VALIDATION_ERROR from the foreign key.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	c.ID = uuid.New()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO comments (id, content, author_id, post_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Content, c.AuthorID, c.PostID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w",
			apperr.FromStore(err, "comment already exists", "post or author does not exist"))
	}
	return nil
}

// Update saves a comment's content.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	c.UpdatedAt = now()
	res, err := s.exec(ctx, `
		UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3
	`, c.Content, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("update comment: %w", err)
	} else if !ok {
		return apperr.NotFound("comment", c.ID)
	}
	return nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	} else if !ok {
		return apperr.NotFound("comment", id)
	}
	return nil
}
