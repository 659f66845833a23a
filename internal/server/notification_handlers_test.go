package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nex/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestGetNotificationsHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	post := createPost(t, db, alice.ID, "noticed")

	db.Create(&models.Notification{UserID: alice.ID, CreatorID: bob.ID, Type: models.NotificationLike, PostID: &post.ID})
	db.Create(&models.Notification{UserID: alice.ID, CreatorID: bob.ID, Type: models.NotificationFollow, Read: true})
	// Bob's own notification must not leak into Alice's list.
	db.Create(&models.Notification{UserID: bob.ID, CreatorID: alice.ID, Type: models.NotificationFollow})

	app := fiber.New()
	app.Get("/notifications", func(c *fiber.Ctx) error {
		c.Locals("userID", alice.ID)
		return s.GetNotifications(c)
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/notifications", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unread_count"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(out.Notifications))
	}
	if out.UnreadCount != 1 {
		t.Errorf("expected 1 unread, got %d", out.UnreadCount)
	}
	for _, n := range out.Notifications {
		if n.UserID != alice.ID {
			t.Errorf("notification %d belongs to user %d", n.ID, n.UserID)
		}
	}
}

func TestMarkNotificationsReadHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	mine := &models.Notification{UserID: alice.ID, CreatorID: bob.ID, Type: models.NotificationFollow}
	db.Create(mine)
	theirs := &models.Notification{UserID: bob.ID, CreatorID: alice.ID, Type: models.NotificationFollow}
	db.Create(theirs)

	app := fiber.New()
	app.Post("/notifications/read", func(c *fiber.Ctx) error {
		c.Locals("userID", alice.ID)
		return s.MarkNotificationsRead(c)
	})

	payload, _ := json.Marshal(map[string][]uint{"ids": {mine.ID, theirs.ID}})
	req := httptest.NewRequest(http.MethodPost, "/notifications/read", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Success bool  `json:"success"`
		Updated int64 `json:"updated"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if !out.Success || out.Updated != 1 {
		t.Fatalf("expected 1 update, got %+v", out)
	}

	var got models.Notification
	db.First(&got, mine.ID)
	if !got.Read {
		t.Error("own notification should be read")
	}
	db.First(&got, theirs.ID)
	if got.Read {
		t.Error("other user's notification must stay unread")
	}

	t.Run("empty ids rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notifications/read", bytes.NewBufferString(`{"ids":[]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})
}
