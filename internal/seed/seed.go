package seed

import (
	"errors"
	"fmt"
	"log"

	"nex/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with demo users, posts, follows, engagements
// and the notifications those would have produced.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding database with %d users and %d posts", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	factory := NewFactory(db, SeedOptions{MaxDays: 30})

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rnd.Intn(len(users))]
		post, err := factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("created %d posts", len(posts))

	// Follow graph: everyone follows a handful of others.
	for _, follower := range users {
		for _, target := range pickUsers(factory, users, 3) {
			if err := factory.CreateFollow(follower, target); err != nil && !isUniqueViolation(err) {
				return fmt.Errorf("create follow: %w", err)
			}
		}
	}

	// Engagement: likes, reshares, quotes and comments across the post set.
	for _, post := range posts {
		for _, user := range pickUsers(factory, users, factory.rnd.Intn(4)) {
			if err := factory.CreateLike(user, post); err != nil && !isUniqueViolation(err) {
				return fmt.Errorf("create like: %w", err)
			}
		}
		if factory.rnd.Intn(3) == 0 {
			reposter := users[factory.rnd.Intn(len(users))]
			var err error
			if factory.rnd.Intn(2) == 0 {
				_, err = factory.CreateQuote(reposter, post)
			} else {
				_, err = factory.CreateRepost(reposter, post)
			}
			if err != nil && !isUniqueViolation(err) {
				return fmt.Errorf("create repost: %w", err)
			}
		}
		for _, user := range pickUsers(factory, users, factory.rnd.Intn(3)) {
			if _, err := factory.CreateComment(user, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
	}

	log.Println("seeding complete")
	return nil
}

// pickUsers returns up to n distinct random users.
func pickUsers(f *Factory, users []*models.User, n int) []*models.User {
	if n >= len(users) {
		n = len(users)
	}
	perm := f.rnd.Perm(len(users))
	out := make([]*models.User, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, users[idx])
	}
	return out
}

// isUniqueViolation lets the seeder shrug off random duplicate engagements.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Notification{},
		&models.Comment{},
		&models.Like{},
		&models.Repost{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
