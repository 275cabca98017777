package repository

import (
	"context"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// InteractionRepository manages the like/save join rows.
//
// Insert* and Delete* are conditional single-statement writes: insert-if-absent
// via ON CONFLICT DO NOTHING against the (post_id, user_id) unique index, and
// delete-if-present. The returned bool reports whether a row was actually
// written, which is what lets callers apply counter deltas exactly once under
// concurrent toggles.
type InteractionRepository interface {
	InsertLike(ctx context.Context, postID, userID uint) (bool, error)
	DeleteLike(ctx context.Context, postID, userID uint) (bool, error)
	InsertSave(ctx context.Context, postID, userID uint) (bool, error)
	DeleteSave(ctx context.Context, postID, userID uint) (bool, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	SavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	ListSaves(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Save, error)
}

// interactionRepository implements InteractionRepository
type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) InsertLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`INSERT INTO likes (post_id, user_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, time.Now().UTC(),
	)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) DeleteLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := conn(ctx, r.db).WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) InsertSave(ctx context.Context, postID, userID uint) (bool, error) {
	res := conn(ctx, r.db).WithContext(ctx).Exec(
		`INSERT INTO saves (post_id, user_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, time.Now().UTC(),
	)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) DeleteSave(ctx context.Context, postID, userID uint) (bool, error) {
	res := conn(ctx, r.db).WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Save{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := conn(ctx, r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *interactionRepository) SavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := conn(ctx, r.db).WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *interactionRepository) ListSaves(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Save, error) {
	var saves []models.Save
	err := applyCursor(conn(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&saves).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return saves, nil
}
