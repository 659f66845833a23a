package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nex/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestCreateCommentHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	commenter := createUser(t, db, "commenter")
	post := createPost(t, db, author.ID, "commentable")

	app := fiber.New()
	app.Post("/posts/:id/comments", func(c *fiber.Ctx) error {
		c.Locals("userID", commenter.ID)
		return s.CreateComment(c)
	})

	url := fmt.Sprintf("/posts/%d/comments", post.ID)

	t.Run("success with notification", func(t *testing.T) {
		body := bytes.NewBufferString(`{"content":"well said"}`)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var out struct {
			Success bool           `json:"success"`
			Comment models.Comment `json:"comment"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		if !out.Success || out.Comment.Content != "well said" {
			t.Fatalf("unexpected response %+v", out)
		}

		var n models.Notification
		if err := db.Where("user_id = ? AND type = ?", author.ID, models.NotificationComment).First(&n).Error; err != nil {
			t.Fatalf("expected COMMENT notification: %v", err)
		}
		if n.CommentID == nil || *n.CommentID != out.Comment.ID {
			t.Error("notification should reference the comment")
		}
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		body := bytes.NewBufferString(`{"content":""}`)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("missing post", func(t *testing.T) {
		body := bytes.NewBufferString(`{"content":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/posts/99999/comments", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestGetCommentsHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, "discussed")
	db.Create(&models.Comment{Content: "first", UserID: author.ID, PostID: post.ID})
	db.Create(&models.Comment{Content: "second", UserID: author.ID, PostID: post.ID})

	app := fiber.New()
	app.Get("/posts/:id/comments", s.GetComments)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/posts/%d/comments", post.ID), nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Comments []models.Comment `json:"comments"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(out.Comments))
	}
	if out.Comments[0].Content != "first" {
		t.Error("expected oldest comment first")
	}
}

func TestDeleteCommentHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	author := createUser(t, db, "author")
	stranger := createUser(t, db, "stranger")
	post := createPost(t, db, author.ID, "post")
	comment := &models.Comment{Content: "mine", UserID: author.ID, PostID: post.ID}
	db.Create(comment)

	app := fiber.New()
	app.Delete("/as/:userId/comments/:id", func(c *fiber.Ctx) error {
		uid, _ := c.ParamsInt("userId")
		c.Locals("userID", uint(uid))
		return s.DeleteComment(c)
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/as/%d/comments/%d", stranger.ID, comment.ID), nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/as/%d/comments/%d", author.ID, comment.ID), nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for author, got %d", resp.StatusCode)
	}
}
