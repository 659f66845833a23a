package models

import "time"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	// NotificationLike is sent when someone likes a post.
	NotificationLike NotificationType = "LIKE"
	// NotificationComment is sent when someone comments on a post.
	NotificationComment NotificationType = "COMMENT"
	// NotificationFollow is sent when someone follows a user.
	NotificationFollow NotificationType = "FOLLOW"
	// NotificationRepost is sent when someone reshares a post.
	NotificationRepost NotificationType = "REPOST"
	// NotificationCited is sent when someone quote-reposts a post.
	NotificationCited NotificationType = "CITED"
)

// Notification is an append-only audit record addressed to the owner of the
// affected entity. It is never created when the actor is the recipient, and
// it is never removed when the relation that produced it toggles off. The
// only path that deletes notifications is the post-delete cascade.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Type      NotificationType `gorm:"type:varchar(20);not null;index" json:"type"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // recipient
	CreatorID uint             `gorm:"not null" json:"creator_id"`    // actor
	PostID    *uint            `gorm:"index" json:"post_id,omitempty"`
	CommentID *uint            `json:"comment_id,omitempty"`
	RepostID  *uint            `json:"repost_id,omitempty"`
	Read      bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time        `json:"created_at"`

	Creator User     `gorm:"foreignKey:CreatorID" json:"creator"`
	Post    *Post    `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Comment *Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	Repost  *Repost  `gorm:"foreignKey:RepostID" json:"repost,omitempty"`
}
