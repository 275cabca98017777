package service

import (
	"context"

	"pulse/internal/cache"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"
	"pulse/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostService coordinates post mutations: the post row, its parent's reply
// counter, the like/save join rows and their counters, and cache
// invalidation. Counters are only ever moved by atomic deltas, and only when
// the corresponding join-row write actually changed a row. Every write that
// pairs a row change with a counter delta runs inside one transaction, so a
// failure between the two statements leaves neither visible.
type PostService struct {
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
	tx              repository.Transactor
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, interactionRepo repository.InteractionRepository, tx repository.Transactor) *PostService {
	return &PostService{
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		tx:              tx,
	}
}

// CreatePostInput carries the fields for creating a post or reply.
type CreatePostInput struct {
	Content  string
	ParentID *uint
}

// CreatePost creates a post authored by user, snapshotting the author's
// profile into the row. When the post is a reply, the parent's reply counter
// is incremented in the same transaction; a dangling parent makes the
// increment a no-op rather than an error.
func (s *PostService) CreatePost(ctx context.Context, user *models.User, input CreatePostInput) (*models.Post, error) {
	if user == nil {
		return nil, models.NewUnauthenticatedError("")
	}

	content, err := validation.NormalizePostContent(input.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Content:        content,
		UserID:         user.ID,
		ParentID:       input.ParentID,
		AuthorName:     user.Name,
		AuthorUsername: user.Username,
		AuthorAvatar:   user.Avatar,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.postRepo.Create(ctx, post); err != nil {
			return err
		}
		if input.ParentID != nil {
			return s.postRepo.IncrementReplyCount(ctx, *input.ParentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		cache.Invalidate(ctx, cache.PostRepliesKey(*input.ParentID))
	}
	cache.InvalidateFeed(ctx)
	return post, nil
}

// DeletePost hard-deletes a post. Only the author may delete; a reply's
// parent gets its reply counter decremented in the same transaction, floored
// at zero.
func (s *PostService) DeletePost(ctx context.Context, user *models.User, postID uint) error {
	if user == nil {
		return models.NewUnauthenticatedError("")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != user.ID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.postRepo.Delete(ctx, postID); err != nil {
			return err
		}
		if post.ParentID != nil {
			return s.postRepo.DecrementReplyCount(ctx, *post.ParentID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if post.ParentID != nil {
		cache.Invalidate(ctx, cache.PostRepliesKey(*post.ParentID))
	}
	cache.InvalidateFeed(ctx)
	return nil
}

// ToggleLike flips the viewer's like on a post and returns the resulting
// state. The join-row write decides which way the toggle went; the counter
// moves in the same transaction, and only when the write changed a row, so
// concurrent toggles from the same viewer settle at a consistent count.
func (s *PostService) ToggleLike(ctx context.Context, user *models.User, postID uint) (_ bool, err error) {
	if user == nil {
		return false, models.NewUnauthenticatedError("")
	}

	span, ctx := observability.NewSpan(ctx, "post.toggle_like")
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if _, err = s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}

	var liked bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		inserted, err := s.interactionRepo.InsertLike(ctx, postID, user.ID)
		if err != nil {
			return err
		}
		if inserted {
			liked = true
			return s.postRepo.IncrementLikeCount(ctx, postID)
		}

		deleted, err := s.interactionRepo.DeleteLike(ctx, postID, user.ID)
		if err != nil {
			return err
		}
		if deleted {
			return s.postRepo.DecrementLikeCount(ctx, postID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if liked {
		middleware.ToggleOperations.WithLabelValues("like", "on").Inc()
	} else {
		middleware.ToggleOperations.WithLabelValues("like", "off").Inc()
	}
	return liked, nil
}

// ToggleSave flips the viewer's save on a post and returns the resulting
// state. Saves keep no denormalized counter, so this is just the join-row
// conditional write and needs no transaction.
func (s *PostService) ToggleSave(ctx context.Context, user *models.User, postID uint) (_ bool, err error) {
	if user == nil {
		return false, models.NewUnauthenticatedError("")
	}

	span, ctx := observability.NewSpan(ctx, "post.toggle_save")
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if _, err = s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}

	inserted, err := s.interactionRepo.InsertSave(ctx, postID, user.ID)
	if err != nil {
		return false, err
	}
	if inserted {
		middleware.ToggleOperations.WithLabelValues("save", "on").Inc()
		return true, nil
	}

	if _, err = s.interactionRepo.DeleteSave(ctx, postID, user.ID); err != nil {
		return false, err
	}
	middleware.ToggleOperations.WithLabelValues("save", "off").Inc()
	return false, nil
}
