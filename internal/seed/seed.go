package seed

import (
	"fmt"
	"log"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// DryRun builds entities without writing to the database.
	DryRun bool
	// MaxDays spreads post timestamps over this many days back (default 90).
	MaxDays int
}

// Seed populates the database with demo users, posts, replies, follows,
// likes and saves. Denormalized counters are kept consistent with the join
// rows so the seeded data looks exactly like data the application produced.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 200
	}
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d demo users created", len(users))

	posts, err := createPosts(factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	replies, err := createReplies(factory, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create replies: %w", err)
	}
	log.Printf("✓ %d replies created", replies)

	follows, err := createFollows(factory, users)
	if err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ %d follow edges created", follows)

	likes, saves, err := createInteractions(factory, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create interactions: %w", err)
	}
	log.Printf("✓ %d likes and %d saves created", likes, saves)

	log.Println("🎉 Seeding complete")
	return nil
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(f *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.rng.Intn(len(users))]
		posts = append(posts, f.BuildPost(author))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// createReplies attaches replies to roughly a third of the posts. Reply
// counts on the parents are maintained by the factory.
func createReplies(f *Factory, users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, parent := range posts {
		if f.rng.Intn(3) != 0 {
			continue
		}
		for i := 0; i < f.rng.Intn(4)+1; i++ {
			author := users[f.rng.Intn(len(users))]
			if _, err := f.CreateReply(author, parent); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// createFollows gives every user a handful of followed accounts so the
// following feed has content for any seeded viewer.
func createFollows(f *Factory, users []*models.User) (int, error) {
	created := 0
	for _, follower := range users {
		targets := f.rng.Perm(len(users))
		wanted := f.rng.Intn(6) + 2
		for _, idx := range targets {
			if wanted == 0 {
				break
			}
			followed := users[idx]
			if followed.ID == follower.ID {
				continue
			}
			if err := f.CreateFollow(follower, followed); err != nil {
				return created, err
			}
			created++
			wanted--
		}
	}
	return created, nil
}

func createInteractions(f *Factory, users []*models.User, posts []*models.Post) (likes, saves int, err error) {
	for _, user := range users {
		for _, idx := range f.rng.Perm(len(posts))[:min(len(posts), f.rng.Intn(10)+3)] {
			if err := f.CreateLike(user, posts[idx]); err != nil {
				return likes, saves, err
			}
			likes++
		}
		for _, idx := range f.rng.Perm(len(posts))[:min(len(posts), f.rng.Intn(4))] {
			if err := f.CreateSave(user, posts[idx]); err != nil {
				return likes, saves, err
			}
			saves++
		}
	}
	return likes, saves, nil
}

// clearData removes previously seeded rows, children before parents.
func clearData(db *gorm.DB) error {
	for _, table := range []string{"likes", "saves", "follows", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
