package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a short text/image update. Content and ImageURL are individually
// optional but at least one must be present (enforced in the service layer).
// ImageURL is an opaque reference into external object storage.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"-" json:"comments_count"`
	// RepostsCount is not persisted; computed at query time
	RepostsCount int `gorm:"-" json:"reposts_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"-" json:"liked"`
	// Reposted indicates whether the current requesting user reposted this post (computed)
	Reposted bool `gorm:"-" json:"reposted"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
