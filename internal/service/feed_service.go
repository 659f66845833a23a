// Package service contains business logic for the application.
package service

import (
	"context"
	"sort"
	"time"

	"nex/internal/cache"
	"nex/internal/models"
	"nex/internal/observability"
	"nex/internal/repository"
)

// FeedItemKind tags a timeline row as an original post or a reshare of one.
type FeedItemKind string

const (
	// FeedItemPost is an original post surfaced at its own creation time.
	FeedItemPost FeedItemKind = "post"
	// FeedItemRepost is a reshare surfaced at the reshare time.
	FeedItemRepost FeedItemKind = "repost"
)

// FeedItem is one row of the composed timeline. For reposts, Post is the
// original post and Repost carries the reshare metadata.
type FeedItem struct {
	Kind    FeedItemKind   `json:"kind"`
	Post    *models.Post   `json:"post"`
	Repost  *models.Repost `json:"repost,omitempty"`
	SortKey time.Time      `json:"sort_key"`
}

// itemID is the tie-break key: the repost id for reshares, the post id otherwise.
func (it *FeedItem) itemID() uint {
	if it.Kind == FeedItemRepost {
		return it.Repost.ID
	}
	return it.Post.ID
}

// ComposeTimeline merges posts and reposts into one reverse-chronological
// sequence. Every post becomes an item keyed by its creation time. Every
// repost is resolved against the supplied post set; a repost whose post is
// not present (deleted concurrently) is dropped without error. Resolved
// reposts are keyed by the repost's own timestamp, so a reshare of an old
// post surfaces at the reshare time while the original stays at its own slot.
//
// Equal sort keys order by descending item id, with a repost ahead of a post
// on a full tie, so pagination sees a stable order.
func ComposeTimeline(posts []*models.Post, reposts []*models.Repost) []FeedItem {
	start := time.Now()
	defer func() {
		observability.FeedComposeLatency.Observe(time.Since(start).Seconds())
	}()

	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	items := make([]FeedItem, 0, len(posts)+len(reposts))
	for _, p := range posts {
		items = append(items, FeedItem{
			Kind:    FeedItemPost,
			Post:    p,
			SortKey: p.CreatedAt,
		})
	}
	for _, rp := range reposts {
		original, ok := byID[rp.PostID]
		if !ok {
			continue
		}
		items = append(items, FeedItem{
			Kind:    FeedItemRepost,
			Post:    original,
			Repost:  rp,
			SortKey: rp.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if !a.SortKey.Equal(b.SortKey) {
			return a.SortKey.After(b.SortKey)
		}
		if a.itemID() != b.itemID() {
			return a.itemID() > b.itemID()
		}
		return a.Kind == FeedItemRepost && b.Kind == FeedItemPost
	})

	return items
}

// FeedService composes the unified home timeline.
type FeedService struct {
	postRepo   repository.PostRepository
	repostRepo repository.RepostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository, repostRepo repository.RepostRepository) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		repostRepo: repostRepo,
	}
}

// GetFeed reads current posts and reposts and composes the timeline. There is
// no partial result: a store failure is returned to the caller as an error.
func (s *FeedService) GetFeed(ctx context.Context, limit, offset int, currentUserID uint) ([]FeedItem, error) {
	// The anonymous first page is cache-aside; per-viewer flags make
	// authenticated reads uncacheable.
	if currentUserID == 0 && offset == 0 {
		var items []FeedItem
		err := cache.Aside(ctx, cache.FeedKey(), &items, cache.FeedTTL, func() error {
			fetched, fetchErr := s.fetch(ctx, limit, 0, 0)
			if fetchErr != nil {
				return fetchErr
			}
			items = fetched
			return nil
		})
		return items, err
	}

	return s.fetch(ctx, limit, offset, currentUserID)
}

// fetch composes the requested window of the merged timeline. Both sources are
// over-fetched to offset+limit rows so the window is cut from the merged order,
// not from each source independently; page boundaries then never skip or
// duplicate items.
func (s *FeedService) fetch(ctx context.Context, limit, offset int, currentUserID uint) ([]FeedItem, error) {
	span := limit + offset

	posts, err := s.postRepo.List(ctx, span, 0, currentUserID)
	if err != nil {
		return nil, err
	}
	reposts, err := s.repostRepo.List(ctx, span, 0)
	if err != nil {
		return nil, err
	}

	items := ComposeTimeline(posts, reposts)
	if offset >= len(items) {
		return []FeedItem{}, nil
	}
	if end := offset + limit; end < len(items) {
		items = items[offset:end]
	} else {
		items = items[offset:]
	}
	return items, nil
}
