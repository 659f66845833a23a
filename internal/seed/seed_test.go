package seed

import (
	"testing"

	"nex/internal/database"
	"nex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFactory_CreateUserAndPost(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db, SeedOptions{MaxDays: 7})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.ExternalID)

	post, err := f.CreatePost(user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, post.UserID)
	assert.NotEmpty(t, post.Content)
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_EngagementNotifications(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db, SeedOptions{})

	author, err := f.CreateUser()
	require.NoError(t, err)
	fan, err := f.CreateUser()
	require.NoError(t, err)
	post, err := f.CreatePost(author)
	require.NoError(t, err)

	require.NoError(t, f.CreateLike(fan, post))
	_, err = f.CreateQuote(fan, post)
	require.NoError(t, err)
	require.NoError(t, f.CreateFollow(fan, author))

	// Self-engagement produces no notification.
	require.NoError(t, f.CreateLike(author, post))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", author.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSeed_PopulatesEverything(t *testing.T) {
	db := setupSeedTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 5, NumPosts: 10}))

	var users, posts, follows int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	assert.EqualValues(t, 5, users)
	assert.EqualValues(t, 10, posts)
	assert.NotZero(t, follows)

	// Idempotent re-run with clean.
	require.NoError(t, Seed(db, Options{NumUsers: 2, NumPosts: 3, ShouldClean: true}))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)
}
