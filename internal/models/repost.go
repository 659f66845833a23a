package models

import "time"

// Repost is a reshare of an original post. A row without its own content is a
// plain reshare; a row carrying Content and/or ImageURL is a quote repost.
// A user may hold at most one repost row per original post.
type Repost struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_repost_user_post" json:"user_id"`
	PostID   uint   `gorm:"not null;uniqueIndex:idx_repost_user_post" json:"post_id"`
	Content  string `json:"content,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsQuote reports whether the repost carries its own content.
func (r *Repost) IsQuote() bool {
	return r.Content != "" || r.ImageURL != ""
}
