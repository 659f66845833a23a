package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nex/internal/models"
	"nex/internal/service"

	"github.com/gofiber/fiber/v2"
)

func TestGetFeed(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	app := fiber.New()
	app.Get("/feed", s.GetFeed)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	old := &models.Post{Content: "old post", UserID: alice.ID, CreatedAt: time.Now().Add(-2 * time.Hour)}
	db.Create(old)
	recent := &models.Post{Content: "recent post", UserID: alice.ID, CreatedAt: time.Now().Add(-time.Hour)}
	db.Create(recent)
	// Bob reshares the old post now, so it resurfaces at the top.
	db.Create(&models.Repost{UserID: bob.ID, PostID: old.ID})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Items []service.FeedItem `json:"items"`
		Count int                `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 3 {
		t.Fatalf("expected 3 feed items, got %d", body.Count)
	}
	if body.Items[0].Kind != service.FeedItemRepost {
		t.Errorf("expected repost first, got %s", body.Items[0].Kind)
	}
	if body.Items[0].Post.ID != old.ID {
		t.Errorf("repost should resolve to the old post, got post %d", body.Items[0].Post.ID)
	}
	if body.Items[1].Post.ID != recent.ID {
		t.Errorf("expected recent post second, got post %d", body.Items[1].Post.ID)
	}
}

func TestGetFeed_ViewerFlags(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	post := createPost(t, db, alice.ID, "likeable")
	db.Create(&models.Like{UserID: bob.ID, PostID: post.ID})

	app := fiber.New()
	app.Get("/feed", func(c *fiber.Ctx) error {
		c.Locals("userID", bob.ID)
		return s.GetFeed(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, _ := app.Test(req)

	var body struct {
		Items []service.FeedItem `json:"items"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(body.Items))
	}
	if !body.Items[0].Post.Liked {
		t.Error("expected liked flag set for the viewer")
	}
	if body.Items[0].Post.LikesCount != 1 {
		t.Errorf("expected likes_count 1, got %d", body.Items[0].Post.LikesCount)
	}
}
