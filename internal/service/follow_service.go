package service

import (
	"context"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// FollowService manages the directed follow graph and its listings.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// ToggleFollow flips whether user follows target and returns the resulting
// state. Self-follows are rejected outright; the target must exist.
func (s *FollowService) ToggleFollow(ctx context.Context, user *models.User, targetID uint) (_ bool, err error) {
	if user == nil {
		return false, models.NewUnauthenticatedError("")
	}
	if user.ID == targetID {
		return false, models.NewSelfFollowError()
	}

	span, ctx := observability.NewSpan(ctx, "follow.toggle")
	span.AddAttributes(attribute.Int64("follow.target_id", int64(targetID)))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if _, err = s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	inserted, err := s.followRepo.Insert(ctx, user.ID, targetID)
	if err != nil {
		return false, err
	}
	if inserted {
		middleware.ToggleOperations.WithLabelValues("follow", "on").Inc()
		return true, nil
	}

	if _, err := s.followRepo.Delete(ctx, user.ID, targetID); err != nil {
		return false, err
	}
	middleware.ToggleOperations.WithLabelValues("follow", "off").Inc()
	return false, nil
}

// IsFollowing reports whether viewer follows target. Anonymous viewers
// follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, viewer *models.User, targetID uint) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	return s.followRepo.Exists(ctx, viewer.ID, targetID)
}

// FollowCounts returns the follower and following totals for a user.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (followers, following int64, err error) {
	followers, err = s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// GetFollowers returns one page of the users following userID, newest edge
// first, each annotated with whether the viewer follows them.
func (s *FollowService) GetFollowers(ctx context.Context, viewer *models.User, userID uint, cursorToken string, pageSize int) (*models.FollowPage, error) {
	pageSize = NormalizePageSize(pageSize)
	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	follows, err := s.followRepo.ListFollowers(ctx, userID, cur, pageSize+1)
	if err != nil {
		return nil, err
	}
	return s.buildFollowPage(ctx, viewer, follows, pageSize, func(f models.Follow) uint { return f.FollowerID })
}

// GetFollowing returns one page of the users userID follows, newest edge
// first, each annotated with whether the viewer follows them.
func (s *FollowService) GetFollowing(ctx context.Context, viewer *models.User, userID uint, cursorToken string, pageSize int) (*models.FollowPage, error) {
	pageSize = NormalizePageSize(pageSize)
	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	follows, err := s.followRepo.ListFollowing(ctx, userID, cur, pageSize+1)
	if err != nil {
		return nil, err
	}
	return s.buildFollowPage(ctx, viewer, follows, pageSize, func(f models.Follow) uint { return f.FollowedID })
}

// buildFollowPage resolves the related user for each edge and annotates it
// with the viewer's follow state via a single batched lookup. Edges whose
// user record is gone are dropped from the page.
func (s *FollowService) buildFollowPage(ctx context.Context, viewer *models.User, follows []models.Follow, pageSize int, relatedID func(models.Follow) uint) (*models.FollowPage, error) {
	isDone := len(follows) <= pageSize
	if !isDone {
		follows = follows[:pageSize]
	}

	relatedIDs := lo.Uniq(lo.Map(follows, func(f models.Follow, _ int) uint { return relatedID(f) }))
	users, err := s.userRepo.GetByIDs(ctx, relatedIDs)
	if err != nil {
		return nil, err
	}
	userByID := lo.KeyBy(users, func(u models.User) uint { return u.ID })

	var followedSet map[uint]bool
	if viewer != nil {
		followedIDs, err := s.followRepo.FollowingIDsAmong(ctx, viewer.ID, relatedIDs)
		if err != nil {
			return nil, err
		}
		followedSet = lo.SliceToMap(followedIDs, func(id uint) (uint, bool) { return id, true })
	}

	items := make([]models.FollowEntry, 0, len(follows))
	for _, f := range follows {
		u, ok := userByID[relatedID(f)]
		if !ok {
			continue
		}
		items = append(items, models.FollowEntry{
			User: &models.PostAuthor{
				ID:       u.ID,
				Name:     u.Name,
				Username: u.Username,
				Avatar:   u.Avatar,
			},
			FollowedAt:     f.CreatedAt,
			IsFollowedByMe: followedSet[u.ID],
		})
	}

	page := &models.FollowPage{Items: items, IsDone: isDone}
	if !isDone && len(follows) > 0 {
		last := follows[len(follows)-1]
		token := repository.EncodeCursor(repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.ContinueCursor = &token
	}
	return page, nil
}
