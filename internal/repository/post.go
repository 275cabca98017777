package repository

import (
	"context"
	"errors"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
//
// List* methods take a keyset cursor and a row limit; callers fetch limit+1
// rows to detect whether more pages exist. Counter mutations are expressed as
// atomic SQL deltas relative to the stored value at write time, never as
// read-old-then-write-computed, so concurrent toggles cannot lose updates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
	ListAll(ctx context.Context, cur *Cursor, limit int) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, cur *Cursor, limit int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Post, error)
	ListReplies(ctx context.Context, parentID uint, cur *Cursor, limit int) ([]models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	IncrementReplyCount(ctx context.Context, id uint) error
	DecrementReplyCount(ctx context.Context, id uint) error
	IncrementLikeCount(ctx context.Context, id uint) error
	DecrementLikeCount(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := conn(ctx, r.db).WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := conn(ctx, r.db).WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []models.Post
	if err := conn(ctx, r.db).WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyCursor narrows a feed query to rows strictly after the cursor position
// in (created_at DESC, id DESC) order. The row-value comparison keeps already
// returned rows out of later pages even when new posts land mid-traversal.
func applyCursor(db *gorm.DB, cur *Cursor) *gorm.DB {
	if cur == nil {
		return db
	}
	return db.Where("(created_at, id) < (?, ?)", cur.CreatedAt, cur.ID)
}

func (r *postRepository) ListAll(ctx context.Context, cur *Cursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := applyCursor(conn(ctx, r.db).WithContext(ctx), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, cur *Cursor, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []models.Post
	err := applyCursor(conn(ctx, r.db).WithContext(ctx).Where("user_id IN ?", authorIDs), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := applyCursor(conn(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListReplies(ctx context.Context, parentID uint, cur *Cursor, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := applyCursor(conn(ctx, r.db).WithContext(ctx).Where("parent_id = ?", parentID), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Search is an illustrative substring scan, not a scalable search design.
// It walks the posts table with LOWER(...) LIKE, which cannot use an index.
func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	like := "%" + query + "%"
	err := conn(ctx, r.db).WithContext(ctx).
		Where("LOWER(content) LIKE LOWER(?)", like).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Delete hard-deletes the post row. Dependent likes/saves and child replies
// are intentionally left in place; see the orphaned-reply note on models.Post.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := conn(ctx, r.db).WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) IncrementReplyCount(ctx context.Context, id uint) error {
	// No-op when the parent no longer exists: a reply to a deleted post is
	// still created, it just increments nothing.
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`UPDATE posts SET reply_count = reply_count + 1 WHERE id = ?`, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

func (r *postRepository) DecrementReplyCount(ctx context.Context, id uint) error {
	// Floored at zero via the WHERE guard rather than GREATEST(), which
	// keeps the statement portable across postgres and sqlite.
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`UPDATE posts SET reply_count = reply_count - 1 WHERE id = ? AND reply_count > 0`, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

func (r *postRepository) IncrementLikeCount(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

func (r *postRepository) DecrementLikeCount(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`UPDATE posts SET like_count = like_count - 1 WHERE id = ? AND like_count > 0`, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}
