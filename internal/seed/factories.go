// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		PrincipalID: "seed|" + uuid.NewString(),
		Name:        gofakeit.Name(),
		Username:    fmt.Sprintf("%s_%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		LastLoginAt: time.Now().UTC(),
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s (no DB write)", user.Username)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post authored by user, with the author snapshot
// taken and a realistic created_at spread, but does not persist it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:        gofakeit.Paragraph(1, 3, 8, " "),
		UserID:         user.ID,
		AuthorName:     user.Name,
		AuthorUsername: user.Username,
		AuthorAvatar:   user.Avatar,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateReply persists a reply to parent and bumps the parent's counter,
// keeping the seeded data consistent with what the application maintains.
func (f *Factory) CreateReply(user *models.User, parent *models.Post) (*models.Post, error) {
	reply := f.BuildPost(user, func(p *models.Post) {
		p.ParentID = &parent.ID
		p.Content = gofakeit.Sentence(f.rng.Intn(12) + 3)
		if p.CreatedAt.Before(parent.CreatedAt) {
			p.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rng.Intn(3600)+1) * time.Second)
		}
	})

	if f.opts.DryRun {
		f.nextID++
		reply.ID = f.nextID
		return reply, nil
	}
	if err := f.db.Create(reply).Error; err != nil {
		return nil, err
	}
	err := f.db.Exec(`UPDATE posts SET reply_count = reply_count + 1 WHERE id = ?`, parent.ID).Error
	return reply, err
}

// CreateLike persists a like row and bumps the post's counter. Duplicate
// (post, user) pairs are skipped.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	res := f.db.Exec(`INSERT INTO likes (post_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		post.ID, user.ID, time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return f.db.Exec(`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`, post.ID).Error
}

// CreateSave persists a save row. Duplicate (post, user) pairs are skipped.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Exec(`INSERT INTO saves (post_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		post.ID, user.ID, time.Now().UTC()).Error
}

// CreateFollow persists a follow edge. Self-follows and duplicates are skipped.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	if follower.ID == followed.ID {
		return nil
	}
	if f.opts.DryRun {
		return nil
	}
	return f.db.Exec(`INSERT INTO follows (follower_id, followed_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		follower.ID, followed.ID, time.Now().UTC()).Error
}
