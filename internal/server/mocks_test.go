package server

import (
	"context"

	"pulse/internal/featureflags"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context, cur *repository.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByAuthors(ctx context.Context, authorIDs []uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, authorIDs, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, userID, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListReplies(ctx context.Context, parentID uint, cur *repository.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, parentID, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementReplyCount(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) DecrementReplyCount(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementLikeCount(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) DecrementLikeCount(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPrincipalID(ctx context.Context, principalID string) (*models.User, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockInteractionRepository is a mock of the InteractionRepository interface
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) InsertLike(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) DeleteLike(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) InsertSave(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) DeleteSave(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockInteractionRepository) SavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockInteractionRepository) ListSaves(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Save, error) {
	args := m.Called(ctx, userID, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Save), args.Error(1)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Insert(ctx context.Context, followerID, followedID uint) (bool, error) {
	args := m.Called(ctx, followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	args := m.Called(ctx, followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	args := m.Called(ctx, followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	args := m.Called(ctx, followerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) FollowingIDsAmong(ctx context.Context, followerID uint, candidateIDs []uint) ([]uint, error) {
	args := m.Called(ctx, followerID, candidateIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) ListFollowers(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Follow, error) {
	args := m.Called(ctx, userID, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Follow), args.Error(1)
}

func (m *MockFollowRepository) ListFollowing(ctx context.Context, userID uint, cur *repository.Cursor, limit int) ([]models.Follow, error) {
	args := m.Called(ctx, userID, cur, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Follow), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// passthroughTx satisfies repository.Transactor without a database; handler
// tests assert HTTP behavior, not transaction boundaries.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testMocks struct {
	postRepo        *MockPostRepository
	userRepo        *MockUserRepository
	interactionRepo *MockInteractionRepository
	followRepo      *MockFollowRepository
}

// newTestServer wires a Server around fresh repository mocks, skipping DB,
// Redis and Prometheus setup.
func newTestServer() (*Server, *testMocks) {
	mocks := &testMocks{
		postRepo:        new(MockPostRepository),
		userRepo:        new(MockUserRepository),
		interactionRepo: new(MockInteractionRepository),
		followRepo:      new(MockFollowRepository),
	}
	flags := featureflags.NewManager("search=on")
	s := &Server{
		userRepo:        mocks.userRepo,
		postRepo:        mocks.postRepo,
		interactionRepo: mocks.interactionRepo,
		followRepo:      mocks.followRepo,
		featureFlags:    flags,
	}
	s.identityService = service.NewIdentityService(mocks.userRepo)
	s.postService = service.NewPostService(mocks.postRepo, mocks.interactionRepo, passthroughTx{})
	s.feedService = service.NewFeedService(mocks.postRepo, mocks.userRepo, mocks.interactionRepo, mocks.followRepo, flags)
	s.followService = service.NewFollowService(mocks.followRepo, mocks.userRepo)
	return s, mocks
}

// asUser injects a resolved user into request locals, standing in for the
// auth middleware plus RequireUser.
func asUser(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(userLocal, user)
			c.Locals(userIDLocal, user.ID)
		}
		return c.Next()
	}
}
