package service

import (
	"context"
	"strconv"

	"pulse/internal/cache"
	"pulse/internal/featureflags"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultPageSize is used when a request does not specify a page size.
	DefaultPageSize = 10
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 100
)

// Feed variants.
const (
	FeedVariantAll       = "all"
	FeedVariantFollowing = "following"
)

// FeedService composes read-side feed pages: global and following feeds,
// replies, per-user posts, saved posts and search. All listings are ordered
// newest-first on (created_at, id) and paginated with opaque keyset cursors;
// pages are fetched one row past the requested size to decide IsDone without
// a separate count query.
type FeedService struct {
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	interactionRepo repository.InteractionRepository
	followRepo      repository.FollowRepository
	flags           *featureflags.Manager
}

// NewFeedService returns a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	interactionRepo repository.InteractionRepository,
	followRepo repository.FollowRepository,
	flags *featureflags.Manager,
) *FeedService {
	return &FeedService{
		postRepo:        postRepo,
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		followRepo:      followRepo,
		flags:           flags,
	}
}

// NormalizePageSize clamps a requested page size into [1, MaxPageSize],
// substituting the default for zero or negative values.
func NormalizePageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// GetFeed returns one page of the requested feed variant. The "all" variant
// is viewable anonymously; "following" requires a viewer and short-circuits
// to an empty done page when the viewer follows nobody.
func (s *FeedService) GetFeed(ctx context.Context, variant string, viewer *models.User, cursorToken string, pageSize int) (_ *models.FeedPage, err error) {
	if variant == "" {
		variant = FeedVariantAll
	}
	pageSize = NormalizePageSize(pageSize)

	span, ctx := observability.NewSpan(ctx, "feed.get")
	span.AddAttributes(
		attribute.String("feed.variant", variant),
		attribute.Int("feed.page_size", pageSize),
	)
	defer func() {
		span.SetError(err)
		span.End()
	}()

	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	switch variant {
	case FeedVariantAll:
		posts, err = s.fetchAllFeed(ctx, viewer, cur, pageSize)
	case FeedVariantFollowing:
		if viewer == nil {
			return nil, models.NewUnauthenticatedError("")
		}
		var followedIDs []uint
		followedIDs, err = s.followRepo.FollowedIDs(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		if len(followedIDs) == 0 {
			return &models.FeedPage{Items: []models.FeedItem{}, IsDone: true}, nil
		}
		posts, err = s.postRepo.ListByAuthors(ctx, followedIDs, cur, pageSize+1)
	default:
		return nil, models.NewValidationError("Unknown feed variant")
	}
	if err != nil {
		return nil, err
	}

	page, err := s.buildPage(ctx, posts, viewer, pageSize)
	if err != nil {
		return nil, err
	}
	middleware.FeedPagesServed.WithLabelValues(variant).Inc()
	return page, nil
}

// fetchAllFeed serves the hottest query in the system. The unannotated head
// page is cached so one entry serves every viewer; deeper pages and
// non-default page sizes go straight to the database.
func (s *FeedService) fetchAllFeed(ctx context.Context, viewer *models.User, cur *repository.Cursor, pageSize int) ([]models.Post, error) {
	cacheable := cur == nil && pageSize == DefaultPageSize && s.flags.Enabled("feed_cache", viewerID(viewer))
	if !cacheable {
		return s.postRepo.ListAll(ctx, cur, pageSize+1)
	}

	var posts []models.Post
	err := cache.Aside(ctx, cache.FeedHeadKey, &posts, cache.FeedTTL, func() error {
		fetched, err := s.postRepo.ListAll(ctx, nil, pageSize+1)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single annotated post.
func (s *FeedService) GetPost(ctx context.Context, viewer *models.User, postID uint) (*models.FeedItem, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	items, err := s.annotate(ctx, []models.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetReplies returns one page of a post's replies, newest first. The parent
// must exist; replies themselves may reference a deleted parent and are
// served normally from that parent's perspective only until it is gone.
func (s *FeedService) GetReplies(ctx context.Context, viewer *models.User, parentID uint, cursorToken string, pageSize int) (*models.FeedPage, error) {
	pageSize = NormalizePageSize(pageSize)
	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}

	var posts []models.Post
	if cur == nil && pageSize == DefaultPageSize {
		err = cache.Aside(ctx, cache.PostRepliesKey(parentID), &posts, cache.FeedTTL, func() error {
			fetched, err := s.postRepo.ListReplies(ctx, parentID, nil, pageSize+1)
			if err != nil {
				return err
			}
			posts = fetched
			return nil
		})
	} else {
		posts, err = s.postRepo.ListReplies(ctx, parentID, cur, pageSize+1)
	}
	if err != nil {
		return nil, err
	}

	return s.buildPage(ctx, posts, viewer, pageSize)
}

// GetUserPosts returns one page of a user's own posts.
func (s *FeedService) GetUserPosts(ctx context.Context, viewer *models.User, userID uint, cursorToken string, pageSize int) (*models.FeedPage, error) {
	pageSize = NormalizePageSize(pageSize)
	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByUser(ctx, userID, cur, pageSize+1)
	if err != nil {
		return nil, err
	}
	return s.buildPage(ctx, posts, viewer, pageSize)
}

// GetSavedPosts returns one page of the viewer's saved posts, ordered by
// when they were saved. Saves pointing at since-deleted posts are dropped
// from the page rather than surfaced as holes.
func (s *FeedService) GetSavedPosts(ctx context.Context, viewer *models.User, cursorToken string, pageSize int) (*models.FeedPage, error) {
	if viewer == nil {
		return nil, models.NewUnauthenticatedError("")
	}
	pageSize = NormalizePageSize(pageSize)
	cur, err := repository.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}

	saves, err := s.interactionRepo.ListSaves(ctx, viewer.ID, cur, pageSize+1)
	if err != nil {
		return nil, err
	}

	isDone := len(saves) <= pageSize
	if !isDone {
		saves = saves[:pageSize]
	}

	postIDs := lo.Map(saves, func(sv models.Save, _ int) uint { return sv.PostID })
	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	postByID := lo.KeyBy(posts, func(p models.Post) uint { return p.ID })

	// Re-order to match save order; GetByIDs gives no ordering guarantee.
	ordered := make([]models.Post, 0, len(saves))
	for _, sv := range saves {
		if p, ok := postByID[sv.PostID]; ok {
			ordered = append(ordered, p)
		}
	}

	items, err := s.annotate(ctx, ordered, viewer)
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{Items: items, IsDone: isDone}
	if !isDone && len(saves) > 0 {
		last := saves[len(saves)-1]
		token := repository.EncodeCursor(repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.ContinueCursor = &token
	}
	return page, nil
}

// SearchPosts returns one page of posts whose content contains the query,
// case-insensitively. The cursor here is a stringified offset, not a keyset
// token: the scan is unindexed either way, and the simpler cursor keeps the
// endpoint honest about what it is.
func (s *FeedService) SearchPosts(ctx context.Context, viewer *models.User, query, cursorToken string, pageSize int) (*models.FeedPage, error) {
	if !s.flags.Enabled("search", viewerID(viewer)) {
		return nil, models.NewForbiddenError("Search is disabled")
	}
	pageSize = NormalizePageSize(pageSize)

	offset := 0
	if cursorToken != "" {
		parsed, err := strconv.Atoi(cursorToken)
		if err != nil || parsed < 0 {
			return nil, models.NewValidationError("Invalid cursor")
		}
		offset = parsed
	}

	posts, err := s.postRepo.Search(ctx, query, pageSize+1, offset)
	if err != nil {
		return nil, err
	}

	isDone := len(posts) <= pageSize
	if !isDone {
		posts = posts[:pageSize]
	}

	items, err := s.annotate(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{Items: items, IsDone: isDone}
	if !isDone {
		token := strconv.Itoa(offset + pageSize)
		page.ContinueCursor = &token
	}
	return page, nil
}

// buildPage trims a limit+1 fetch down to a page, annotates it and derives
// the continuation cursor from the last row actually served.
func (s *FeedService) buildPage(ctx context.Context, posts []models.Post, viewer *models.User, pageSize int) (*models.FeedPage, error) {
	isDone := len(posts) <= pageSize
	if !isDone {
		posts = posts[:pageSize]
	}

	items, err := s.annotate(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{Items: items, IsDone: isDone}
	if !isDone && len(posts) > 0 {
		last := posts[len(posts)-1]
		token := repository.EncodeCursor(repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.ContinueCursor = &token
	}
	return page, nil
}

// annotate resolves author profiles and the viewer's liked/saved flags for a
// batch of posts with three bulk queries, never per-row lookups. A missing
// author yields a nil Author on the item; the post still renders.
func (s *FeedService) annotate(ctx context.Context, posts []models.Post, viewer *models.User) ([]models.FeedItem, error) {
	if len(posts) == 0 {
		return []models.FeedItem{}, nil
	}

	postIDs := lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })
	authorIDs := lo.Uniq(lo.Map(posts, func(p models.Post, _ int) uint { return p.UserID }))

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorByID := lo.KeyBy(authors, func(u models.User) uint { return u.ID })

	var likedSet, savedSet map[uint]bool
	if viewer != nil {
		likedIDs, err := s.interactionRepo.LikedPostIDs(ctx, viewer.ID, postIDs)
		if err != nil {
			return nil, err
		}
		savedIDs, err := s.interactionRepo.SavedPostIDs(ctx, viewer.ID, postIDs)
		if err != nil {
			return nil, err
		}
		likedSet = lo.SliceToMap(likedIDs, func(id uint) (uint, bool) { return id, true })
		savedSet = lo.SliceToMap(savedIDs, func(id uint) (uint, bool) { return id, true })
	}

	items := make([]models.FeedItem, 0, len(posts))
	for _, p := range posts {
		item := models.FeedItem{
			ID:          p.ID,
			Content:     p.Content,
			CreatedAt:   p.CreatedAt,
			ParentID:    p.ParentID,
			LikeCount:   p.LikeCount,
			ReplyCount:  p.ReplyCount,
			RepostCount: p.RepostCount,
			Liked:       likedSet[p.ID],
			Saved:       savedSet[p.ID],
		}
		if author, ok := authorByID[p.UserID]; ok {
			item.Author = &models.PostAuthor{
				ID:       author.ID,
				Name:     author.Name,
				Username: author.Username,
				Avatar:   author.Avatar,
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func viewerID(viewer *models.User) uint {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}
