package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nex/internal/featureflags"
	"nex/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestToggleRepostHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author.ID, "reshareable")

	app := fiber.New()
	app.Post("/posts/:id/repost", func(c *fiber.Ctx) error {
		c.Locals("userID", fan.ID)
		return s.ToggleRepost(c)
	})

	url := fmt.Sprintf("/posts/%d/repost", post.ID)

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, url, nil))
	var out struct {
		Success bool `json:"success"`
		Created bool `json:"created"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if !out.Success || !out.Created {
		t.Fatalf("expected created toggle, got %+v", out)
	}

	var n models.Notification
	if err := db.Where("user_id = ?", author.ID).First(&n).Error; err != nil {
		t.Fatalf("expected repost notification: %v", err)
	}
	if n.Type != models.NotificationRepost {
		t.Errorf("expected REPOST notification, got %s", n.Type)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, url, nil))
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Created {
		t.Fatal("second toggle should remove the repost")
	}
}

func TestCreateQuoteHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author.ID, "quotable")

	app := fiber.New()
	app.Post("/posts/:id/quote", func(c *fiber.Ctx) error {
		c.Locals("userID", fan.ID)
		return s.CreateQuote(c)
	})

	url := fmt.Sprintf("/posts/%d/quote", post.ID)

	t.Run("success", func(t *testing.T) {
		body := bytes.NewBufferString(`{"content":"my two cents"}`)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var out struct {
			Success bool          `json:"success"`
			Repost  models.Repost `json:"repost"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		if !out.Success || out.Repost.Content != "my two cents" {
			t.Fatalf("unexpected response %+v", out)
		}

		var n models.Notification
		if err := db.Where("user_id = ? AND type = ?", author.ID, models.NotificationCited).First(&n).Error; err != nil {
			t.Fatalf("expected CITED notification: %v", err)
		}
		if n.RepostID == nil || *n.RepostID != out.Repost.ID {
			t.Error("CITED notification should reference the new repost")
		}
	})

	t.Run("duplicate conflict", func(t *testing.T) {
		body := bytes.NewBufferString(`{"content":"again"}`)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("flag disabled", func(t *testing.T) {
		s.featureFlags = featureflags.NewManager("quote_reposts=off")
		defer func() { s.featureFlags = featureflags.NewManager("quote_reposts=on") }()

		body := bytes.NewBufferString(`{"content":"blocked"}`)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestDeleteRepostHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author.ID, "reshared")
	db.Create(&models.Repost{UserID: fan.ID, PostID: post.ID})

	app := fiber.New()
	app.Delete("/posts/:id/repost", func(c *fiber.Ctx) error {
		c.Locals("userID", fan.ID)
		return s.DeleteRepost(c)
	})

	url := fmt.Sprintf("/posts/%d/repost", post.ID)

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, url, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, url, nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestGetRepostsHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author.ID, "original")
	db.Create(&models.Repost{UserID: fan.ID, PostID: post.ID, Content: "quoted"})

	app := fiber.New()
	app.Get("/reposts", s.GetReposts)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reposts", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Reposts []models.Repost `json:"reposts"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Reposts) != 1 {
		t.Fatalf("expected 1 repost, got %d", len(out.Reposts))
	}
	if out.Reposts[0].User.Username != "fan" || out.Reposts[0].Post.User.Username != "author" {
		t.Error("expected reposter and original author preloaded")
	}
}
