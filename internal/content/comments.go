package content

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"blogql/internal/models"
	"blogql/internal/policy"
	"blogql/internal/pubsub"
)

// CommentInput is the payload of CreateComment.
type CommentInput struct {
	PostID  uuid.UUID
	Content string
}

// CreateComment adds a comment by actor to an existing post and announces
// it on the commentAdded topic.
func (s *Service) CreateComment(ctx context.Context, actor *policy.Actor, in CommentInput) (*models.Comment, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	body, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}
	if _, err := findOrNotFound(ctx, "post", in.PostID, s.posts.FindByID); err != nil {
		return nil, err
	}

	c := &models.Comment{Content: body, AuthorID: actor.ID, PostID: in.PostID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if s.bus != nil {
		s.bus.Publish(pubsub.TopicCommentAdded, *c)
	}

	slog.Info("comment created", "comment_id", c.ID, "post_id", c.PostID, "author_id", actor.ID)
	return c, nil
}

// GetComment returns a comment by ID.
func (s *Service) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return findOrNotFound(ctx, "comment", id, s.comments.FindByID)
}

// CommentsByPost lists every comment of a post, newest first. An unknown
// post has no comments.
func (s *Service) CommentsByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// CommentsByAuthor lists every comment written by a user, newest first.
func (s *Service) CommentsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Comment, error) {
	return s.comments.ListByAuthor(ctx, authorID)
}

// UpdateComment replaces the content of a comment owned by actor, or of
// any comment when actor is an admin.
func (s *Service) UpdateComment(ctx context.Context, actor *policy.Actor, id uuid.UUID, content string) (*models.Comment, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	body, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	c, err := findOrNotFound(ctx, "comment", id, s.comments.FindByID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor); err != nil {
		return nil, err
	}

	c.Content = body
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}

	slog.Info("comment updated", "comment_id", c.ID, "actor_id", actor.ID)
	return c, nil
}

// DeleteComment removes a comment and returns it as it was before deletion.
func (s *Service) DeleteComment(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Comment, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	c, err := findOrNotFound(ctx, "comment", id, s.comments.FindByID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(c, actor); err != nil {
		return nil, err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("comment deleted", "comment_id", id, "actor_id", actor.ID)
	return c, nil
}
