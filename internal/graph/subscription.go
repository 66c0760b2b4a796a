package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"blogql/internal/models"
	"blogql/internal/pubsub"
)

// CommentAdded streams comments created on one post until the client
// unsubscribes. Subscribing to an unknown post fails with NOT_FOUND.
func (r *Resolver) CommentAdded(ctx context.Context, args struct{ PostID graphql.ID }) (<-chan *commentResolver, error) {
	postID, err := parseID(args.PostID, "post")
	if err != nil {
		return nil, err
	}
	if _, err := r.content.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	events := r.bus.Subscribe(ctx, pubsub.TopicCommentAdded, func(v any) bool {
		c, ok := v.(models.Comment)
		return ok && c.PostID == postID
	})

	out := make(chan *commentResolver)
	go func() {
		defer close(out)
		for v := range events {
			c := v.(models.Comment)
			select {
			case out <- r.comment(&c):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
