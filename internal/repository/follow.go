package repository

import (
	"context"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// FollowRepository manages directed follow edges between users.
// Insert/Delete follow the same conditional-write contract as
// InteractionRepository: the bool reports whether a row actually changed.
type FollowRepository interface {
	Insert(ctx context.Context, followerID, followedID uint) (bool, error)
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowedIDs(ctx context.Context, followerID uint) ([]uint, error)
	FollowingIDsAmong(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error)
	ListFollowers(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Insert(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, followed_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID, time.Now().UTC(),
	)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) FollowingIDsAmong(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id IN ?", followerID, candidateIDs).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := applyCursor(r.db.WithContext(ctx).Where("followed_id = ?", userID), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, cur *Cursor, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := applyCursor(r.db.WithContext(ctx).Where("follower_id = ?", userID), cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
