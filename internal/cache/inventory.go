package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLs for cached entities. The feed list is short-lived because every
// successful mutation invalidates it anyway; entity keys ride out reads
// between mutations.
const (
	PostTTL  = 5 * time.Minute
	UserTTL  = 10 * time.Minute
	FeedTTL  = 30 * time.Second
	ListTTL  = 1 * time.Minute
	NotifTTL = 30 * time.Second
)

// PostKey returns the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf("post:%d", postID)
}

// UserKey returns the cache key for a single user.
func UserKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// ProfileKey returns the cache key for a profile looked up by username.
func ProfileKey(username string) string {
	return fmt.Sprintf("profile:%s", username)
}

// FeedKey returns the cache key for the anonymous composed timeline.
func FeedKey() string {
	return "feed:public"
}

// PostsListKey returns the cache key for the anonymous posts list.
func PostsListKey() string {
	return "posts:list"
}

// RepostsListKey returns the cache key for the anonymous reposts list.
func RepostsListKey() string {
	return "reposts:list"
}

// NotificationsKey returns the cache key for a user's notification list.
func NotificationsKey(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// Invalidate removes a single key (best-effort).
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	client.Del(ctx, key)
}

// InvalidateFeed drops the composed timeline and its source lists. Called
// after every successful mutation that changes what the feed would render;
// this is the cache half of the data-changed signal.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, FeedKey(), PostsListKey(), RepostsListKey())
}

// InvalidatePost drops a post entity key together with the feed.
func InvalidatePost(ctx context.Context, postID uint) {
	if client == nil {
		return
	}
	client.Del(ctx, PostKey(postID))
	InvalidateFeed(ctx)
}

// InvalidateUser drops a user's entity and profile keys.
func InvalidateUser(ctx context.Context, userID uint, username string) {
	if client == nil {
		return
	}
	client.Del(ctx, UserKey(userID))
	if username != "" {
		client.Del(ctx, ProfileKey(username))
	}
}

// InvalidateNotifications drops a user's notification list.
func InvalidateNotifications(ctx context.Context, userID uint) {
	if client == nil {
		return
	}
	client.Del(ctx, NotificationsKey(userID))
}
