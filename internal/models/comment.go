package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Content and ImageURL are
// individually optional but at least one must be present.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Post     Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
