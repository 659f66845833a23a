// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a Nex account. Identity is owned by the external identity
// provider; ExternalID is the provider's subject and is the only credential
// this service ever sees.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"not null;uniqueIndex" json:"-"`
	Username   string `gorm:"not null;uniqueIndex" json:"username"`
	Name       string `json:"name"`
	Bio        string `json:"bio,omitempty"`
	Location   string `json:"location,omitempty"`
	Website    string `json:"website,omitempty"`
	Image      string `json:"image,omitempty"`

	// Computed at query time, not persisted
	FollowersCount int `gorm:"-" json:"followers_count"`
	FollowingCount int `gorm:"-" json:"following_count"`
	PostsCount     int `gorm:"-" json:"posts_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
