// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"nex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// SeedOptions tunes factory behaviour.
type SeedOptions struct {
	// MaxDays spreads generated created_at timestamps over this many days back.
	MaxDays int
	// DryRun logs what would be created without writing to the database.
	DryRun bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rnd: rnd, nextID: 1000}
}

// spreadBack returns a timestamp up to opts.MaxDays in the past so feeds look
// lived-in instead of everything landing on the same second.
func (f *Factory) spreadBack() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ExternalID: "seed-" + gofakeit.UUID(),
		Username:   gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Name:       gofakeit.Name(),
		Bio:        gofakeit.Sentence(10),
		Location:   gofakeit.City(),
		Website:    gofakeit.URL(),
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:   gofakeit.Paragraph(1, 2, 8, " "),
		UserID:    user.ID,
		CreatedAt: f.spreadBack(),
	}
	// roughly a third of posts carry an image
	if f.rnd.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d", post.UserID)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a sample comment on the provided post, with the
// matching notification for the post's author.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	if user.ID != post.UserID {
		n := &models.Notification{
			Type:      models.NotificationComment,
			UserID:    post.UserID,
			CreatorID: user.ID,
			PostID:    &post.ID,
			CommentID: &comment.ID,
		}
		if err := f.db.Create(n).Error; err != nil {
			return nil, err
		}
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`, with its notification.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	if err := f.db.Create(like).Error; err != nil {
		return err
	}
	if user.ID == post.UserID {
		return nil
	}
	return f.db.Create(&models.Notification{
		Type:      models.NotificationLike,
		UserID:    post.UserID,
		CreatorID: user.ID,
		PostID:    &post.ID,
	}).Error
}

// CreateRepost persists a plain reshare of `post` by `user`, with its
// notification.
func (f *Factory) CreateRepost(user *models.User, post *models.Post) (*models.Repost, error) {
	return f.createRepost(user, post, "")
}

// CreateQuote persists a quote repost of `post` by `user`.
func (f *Factory) CreateQuote(user *models.User, post *models.Post) (*models.Repost, error) {
	return f.createRepost(user, post, gofakeit.Sentence(6))
}

func (f *Factory) createRepost(user *models.User, post *models.Post, content string) (*models.Repost, error) {
	repost := &models.Repost{
		UserID:    user.ID,
		PostID:    post.ID,
		Content:   content,
		CreatedAt: f.spreadBack(),
	}
	if repost.CreatedAt.Before(post.CreatedAt) {
		repost.CreatedAt = post.CreatedAt.Add(time.Duration(f.rnd.Intn(600)+1) * time.Minute)
	}
	if err := f.db.Create(repost).Error; err != nil {
		return nil, err
	}
	if user.ID != post.UserID {
		typ := models.NotificationRepost
		var repostID *uint
		if repost.IsQuote() {
			typ = models.NotificationCited
			repostID = &repost.ID
		}
		n := &models.Notification{
			Type:      typ,
			UserID:    post.UserID,
			CreatorID: user.ID,
			PostID:    &post.ID,
			RepostID:  repostID,
		}
		if err := f.db.Create(n).Error; err != nil {
			return nil, err
		}
	}
	return repost, nil
}

// CreateFollow persists a follow from `follower` to `following`, with its
// notification.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if follower.ID == following.ID {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	if err := f.db.Create(follow).Error; err != nil {
		return err
	}
	return f.db.Create(&models.Notification{
		Type:      models.NotificationFollow,
		UserID:    following.ID,
		CreatorID: follower.ID,
	}).Error
}
