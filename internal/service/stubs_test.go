package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/repository"
)

type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	getByIDFn             func(context.Context, uint) (*models.Post, error)
	getByIDsFn            func(context.Context, []uint) ([]models.Post, error)
	listAllFn             func(context.Context, *repository.Cursor, int) ([]models.Post, error)
	listByAuthorsFn       func(context.Context, []uint, *repository.Cursor, int) ([]models.Post, error)
	listByUserFn          func(context.Context, uint, *repository.Cursor, int) ([]models.Post, error)
	listRepliesFn         func(context.Context, uint, *repository.Cursor, int) ([]models.Post, error)
	searchFn              func(context.Context, string, int, int) ([]models.Post, error)
	deleteFn              func(context.Context, uint) error
	incrementReplyCountFn func(context.Context, uint) error
	decrementReplyCountFn func(context.Context, uint) error
	incrementLikeCountFn  func(context.Context, uint) error
	decrementLikeCountFn  func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *postRepoStub) ListAll(ctx context.Context, cur *repository.Cursor, limit int) ([]models.Post, error) {
	return s.listAllFn(ctx, cur, limit)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs, cur, limit)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	return s.listByUserFn(ctx, userID, cur, limit)
}
func (s *postRepoStub) ListReplies(ctx context.Context, parentID uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	return s.listRepliesFn(ctx, parentID, cur, limit)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementReplyCount(ctx context.Context, id uint) error {
	return s.incrementReplyCountFn(ctx, id)
}
func (s *postRepoStub) DecrementReplyCount(ctx context.Context, id uint) error {
	return s.decrementReplyCountFn(ctx, id)
}
func (s *postRepoStub) IncrementLikeCount(ctx context.Context, id uint) error {
	return s.incrementLikeCountFn(ctx, id)
}
func (s *postRepoStub) DecrementLikeCount(ctx context.Context, id uint) error {
	return s.decrementLikeCountFn(ctx, id)
}

type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDsFn         func(context.Context, []uint) ([]models.User, error)
	getByPrincipalIDFn func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByPrincipalID(ctx context.Context, principalID string) (*models.User, error) {
	return s.getByPrincipalIDFn(ctx, principalID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

type interactionRepoStub struct {
	insertLikeFn   func(context.Context, uint, uint) (bool, error)
	deleteLikeFn   func(context.Context, uint, uint) (bool, error)
	insertSaveFn   func(context.Context, uint, uint) (bool, error)
	deleteSaveFn   func(context.Context, uint, uint) (bool, error)
	likedPostIDsFn func(context.Context, uint, []uint) ([]uint, error)
	savedPostIDsFn func(context.Context, uint, []uint) ([]uint, error)
	listSavesFn    func(context.Context, uint, *repository.Cursor, int) ([]models.Save, error)
}

func (s *interactionRepoStub) InsertLike(ctx context.Context, postID, userID uint) (bool, error) {
	return s.insertLikeFn(ctx, postID, userID)
}
func (s *interactionRepoStub) DeleteLike(ctx context.Context, postID, userID uint) (bool, error) {
	return s.deleteLikeFn(ctx, postID, userID)
}
func (s *interactionRepoStub) InsertSave(ctx context.Context, postID, userID uint) (bool, error) {
	return s.insertSaveFn(ctx, postID, userID)
}
func (s *interactionRepoStub) DeleteSave(ctx context.Context, postID, userID uint) (bool, error) {
	return s.deleteSaveFn(ctx, postID, userID)
}
func (s *interactionRepoStub) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	return s.likedPostIDsFn(ctx, userID, postIDs)
}
func (s *interactionRepoStub) SavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	return s.savedPostIDsFn(ctx, userID, postIDs)
}
func (s *interactionRepoStub) ListSaves(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Save, error) {
	return s.listSavesFn(ctx, userID, cur, limit)
}

type followRepoStub struct {
	insertFn            func(context.Context, uint, uint) (bool, error)
	deleteFn            func(context.Context, uint, uint) (bool, error)
	existsFn            func(context.Context, uint, uint) (bool, error)
	followedIDsFn       func(context.Context, uint) ([]uint, error)
	followingIDsAmongFn func(context.Context, uint, []uint) ([]uint, error)
	listFollowersFn     func(context.Context, uint, *repository.Cursor, int) ([]models.Follow, error)
	listFollowingFn     func(context.Context, uint, *repository.Cursor, int) ([]models.Follow, error)
	countFollowersFn    func(context.Context, uint) (int64, error)
	countFollowingFn    func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Insert(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.insertFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followedIDsFn(ctx, followerID)
}
func (s *followRepoStub) FollowingIDsAmong(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	return s.followingIDsAmongFn(ctx, followerID, candidateIDs)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Follow, error) {
	return s.listFollowersFn(ctx, userID, cur, limit)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Follow, error) {
	return s.listFollowingFn(ctx, userID, cur, limit)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

// txStub satisfies repository.Transactor without a database. It runs fn
// inline and records how many transactions were opened, so tests can assert
// that a mutation's writes happened inside one.
type txStub struct {
	calls int
}

func (t *txStub) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(context.WithValue(ctx, txMarkerKey{}, true))
}

// txMarkerKey marks contexts handed to the txStub callback.
type txMarkerKey struct{}

func inTransaction(ctx context.Context) bool {
	marked, _ := ctx.Value(txMarkerKey{}).(bool)
	return marked
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:   func(context.Context, *models.Post) error { return nil },
		getByIDFn:  func(ctx context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByIDsFn: func(context.Context, []uint) ([]models.Post, error) { return nil, nil },
		listAllFn: func(context.Context, *repository.Cursor, int) ([]models.Post, error) {
			return nil, nil
		},
		listByAuthorsFn: func(context.Context, []uint, *repository.Cursor, int) ([]models.Post, error) {
			return nil, nil
		},
		listByUserFn: func(context.Context, uint, *repository.Cursor, int) ([]models.Post, error) {
			return nil, nil
		},
		listRepliesFn: func(context.Context, uint, *repository.Cursor, int) ([]models.Post, error) {
			return nil, nil
		},
		searchFn:              func(context.Context, string, int, int) ([]models.Post, error) { return nil, nil },
		deleteFn:              func(context.Context, uint) error { return nil },
		incrementReplyCountFn: func(context.Context, uint) error { return nil },
		decrementReplyCountFn: func(context.Context, uint) error { return nil },
		incrementLikeCountFn:  func(context.Context, uint) error { return nil },
		decrementLikeCountFn:  func(context.Context, uint) error { return nil },
	}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:  func(ctx context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDsFn: func(context.Context, []uint) ([]models.User, error) { return nil, nil },
		getByPrincipalIDFn: func(ctx context.Context, principalID string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", principalID)
		},
		createFn: func(context.Context, *models.User) error { return nil },
		updateFn: func(context.Context, *models.User) error { return nil },
	}
}

func noopInteractionRepo() *interactionRepoStub {
	return &interactionRepoStub{
		insertLikeFn:   func(context.Context, uint, uint) (bool, error) { return true, nil },
		deleteLikeFn:   func(context.Context, uint, uint) (bool, error) { return false, nil },
		insertSaveFn:   func(context.Context, uint, uint) (bool, error) { return true, nil },
		deleteSaveFn:   func(context.Context, uint, uint) (bool, error) { return false, nil },
		likedPostIDsFn: func(context.Context, uint, []uint) ([]uint, error) { return nil, nil },
		savedPostIDsFn: func(context.Context, uint, []uint) ([]uint, error) { return nil, nil },
		listSavesFn: func(context.Context, uint, *repository.Cursor, int) ([]models.Save, error) {
			return nil, nil
		},
	}
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		insertFn:            func(context.Context, uint, uint) (bool, error) { return true, nil },
		deleteFn:            func(context.Context, uint, uint) (bool, error) { return false, nil },
		existsFn:            func(context.Context, uint, uint) (bool, error) { return false, nil },
		followedIDsFn:       func(context.Context, uint) ([]uint, error) { return nil, nil },
		followingIDsAmongFn: func(context.Context, uint, []uint) ([]uint, error) { return nil, nil },
		listFollowersFn: func(context.Context, uint, *repository.Cursor, int) ([]models.Follow, error) {
			return nil, nil
		},
		listFollowingFn: func(context.Context, uint, *repository.Cursor, int) ([]models.Follow, error) {
			return nil, nil
		},
		countFollowersFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}
