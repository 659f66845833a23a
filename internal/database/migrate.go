package database

import (
	"nex/internal/models"

	"gorm.io/gorm"
)

// AllModels lists every persisted model in migration order. Referenced tables
// come before the tables that point at them.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Repost{},
		&models.Follow{},
		&models.Notification{},
	}
}

// Migrate runs AutoMigrate for all registered models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
