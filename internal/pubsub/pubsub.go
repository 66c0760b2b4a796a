// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pubsub is the in-process notification bus. Publishers fan out
// payloads to every subscriber of a topic; each subscriber has its own
// buffered channel and an optional filter evaluated per item.
package pubsub

import (
	"context"
	"log/slog"
	"sync"

	"blogql/internal/metrics"
)

// TopicCommentAdded carries every newly created comment.
const TopicCommentAdded = "commentAdded"

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Filter decides whether a subscriber receives a payload.
type Filter func(payload any) bool

type subscriber struct {
	ch     chan any
	filter Filter
}

// Bus is a topic-keyed publish/subscribe hub. The zero value is not usable;
// create one with New.
type Bus struct {
	buffer int

	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// New creates a bus whose subscribers buffer up to buffer items.
func New(buffer int) *Bus {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Publish delivers payload to every matching subscriber of topic. The
// enqueue happens before Publish returns, so a mutation that publishes
// and then responds cannot race a subscriber that was already listening.
// A subscriber whose buffer is full misses the item.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for sub := range b.subs[topic] {
		if sub.filter != nil && !sub.filter(payload) {
			continue
		}
		select {
		case sub.ch <- payload:
			metrics.Notifications.WithLabelValues(topic, "delivered").Inc()
		default:
			metrics.Notifications.WithLabelValues(topic, "dropped").Inc()
			slog.Warn("notification dropped, subscriber buffer full", "topic", topic)
		}
	}
}

// Subscribe registers for payloads on topic that pass filter (nil accepts
// everything). The returned channel is closed when ctx ends or the bus
// is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string, filter Filter) <-chan any {
	sub := &subscriber{ch: make(chan any, b.buffer), filter: filter}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*subscriber]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.mu.Unlock()

	metrics.Subscriptions.Inc()
	slog.Debug("subscription opened", "topic", topic)

	go func() {
		<-ctx.Done()
		b.remove(topic, sub)
	}()

	return sub.ch
}

// remove detaches a subscriber and closes its channel once.
func (b *Bus) remove(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[topic]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, topic)
	}
	close(sub.ch)
	metrics.Subscriptions.Dec()
	slog.Debug("subscription closed", "topic", topic)
}

// Subscribers returns the number of live subscribers on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close ends every subscription. Later publishes are ignored and later
// subscriptions receive an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, set := range b.subs {
		for sub := range set {
			close(sub.ch)
			metrics.Subscriptions.Dec()
		}
		delete(b.subs, topic)
	}
}
