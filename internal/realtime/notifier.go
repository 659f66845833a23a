// Package realtime publishes data-changed events into Redis channels so
// interested consumers (websocket gateways, cache warmers) can react without
// polling.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types carried on the channels.
const (
	EventFeedChanged         = "feed.changed"
	EventNotificationCreated = "notification.created"
)

// Event is the wire payload for a published change.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier provides helpers to publish change events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) publish(ctx context.Context, channel, eventType string, data any) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, channel, string(payload)).Err()
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, eventType string, data any) error {
	return n.publish(ctx, UserChannel(userID), eventType, data)
}

// PublishBroadcast sends an event to all connected consumers.
func (n *Notifier) PublishBroadcast(ctx context.Context, eventType string, data any) error {
	return n.publish(ctx, "events:broadcast", eventType, data)
}

// PublishFeedChanged broadcasts that the composed timeline is stale because
// the given post (or an engagement on it) changed.
func (n *Notifier) PublishFeedChanged(ctx context.Context, postID uint) error {
	return n.PublishBroadcast(ctx, EventFeedChanged, map[string]any{"post_id": postID})
}

// StartSubscriber subscribes to `events:user:*` and the broadcast channel and
// calls onMessage for each incoming message. onMessage receives channel and
// payload.
func (n *Notifier) StartSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "events:user:*", "events:broadcast")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in realtime subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "events:user:" + strconv.FormatUint(uint64(userID), 10)
}
