package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan any) any {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func assertEmpty(t *testing.T, ch <-chan any) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected payload %v", v)
	default:
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := b.Subscribe(ctx, TopicCommentAdded, nil)
	c := b.Subscribe(ctx, TopicCommentAdded, nil)
	other := b.Subscribe(ctx, "elsewhere", nil)

	b.Publish(TopicCommentAdded, "hello")

	// Enqueue is synchronous, so the item is already buffered.
	assert.Equal(t, "hello", receive(t, a))
	assert.Equal(t, "hello", receive(t, c))
	assertEmpty(t, other)
}

func TestFilterDropsNonMatching(t *testing.T) {
	b := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	only7 := b.Subscribe(ctx, TopicCommentAdded, func(p any) bool { return p.(int) == 7 })

	b.Publish(TopicCommentAdded, 3)
	b.Publish(TopicCommentAdded, 7)

	assert.Equal(t, 7, receive(t, only7))
	assertEmpty(t, only7)
}

func TestFullBufferDrops(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx, TopicCommentAdded, nil)
	b.Publish(TopicCommentAdded, 1)
	b.Publish(TopicCommentAdded, 2) // dropped, must not block

	assert.Equal(t, 1, receive(t, ch))
	assertEmpty(t, ch)
}

func TestCancelClosesChannel(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Subscribe(ctx, TopicCommentAdded, nil)
	require.Equal(t, 1, b.Subscribers(TopicCommentAdded))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return b.Subscribers(TopicCommentAdded) == 0 }, time.Second, 5*time.Millisecond)

	// Publishing with no subscribers is a no-op.
	b.Publish(TopicCommentAdded, 1)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx, TopicCommentAdded, nil)
	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late := b.Subscribe(ctx, TopicCommentAdded, nil)
	_, ok = <-late
	assert.False(t, ok)

	b.Publish(TopicCommentAdded, 1)
}
