package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulse/internal/featureflags"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newFeedService(postRepo *postRepoStub, userRepo *userRepoStub, interactionRepo *interactionRepoStub, followRepo *followRepoStub) *FeedService {
	return NewFeedService(postRepo, userRepo, interactionRepo, followRepo, featureflags.NewManager("search=on"))
}

func makePosts(n int, authorID uint) []models.Post {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.Post{
			ID:        uint(n - i),
			Content:   "post",
			UserID:    authorID,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return posts
}

func TestFeedServiceGetFeedFullPageHasCursor(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listAllFn = func(_ context.Context, cur *repository.Cursor, limit int) ([]models.Post, error) {
		if limit != 4 {
			t.Fatalf("expected limit pageSize+1=4, got %d", limit)
		}
		return makePosts(4, 7), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7, Username: "alice"}}, nil
	}

	svc := newFeedService(postRepo, userRepo, noopInteractionRepo(), noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.IsDone {
		t.Fatal("expected more pages")
	}
	if page.ContinueCursor == nil {
		t.Fatal("expected continuation cursor")
	}

	// The cursor must decode back to the last served row's position.
	cur, err := repository.DecodeCursor(*page.ContinueCursor)
	if err != nil {
		t.Fatalf("cursor should round-trip: %v", err)
	}
	last := page.Items[len(page.Items)-1]
	if cur.ID != last.ID || !cur.CreatedAt.Equal(last.CreatedAt) {
		t.Fatalf("cursor points at %v/%d, last item is %v/%d", cur.CreatedAt, cur.ID, last.CreatedAt, last.ID)
	}
}

func TestFeedServiceGetFeedShortPageIsDone(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listAllFn = func(context.Context, *repository.Cursor, int) ([]models.Post, error) {
		return makePosts(2, 7), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7}}, nil
	}

	svc := newFeedService(postRepo, userRepo, noopInteractionRepo(), noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !page.IsDone {
		t.Fatal("expected done page")
	}
	if page.ContinueCursor != nil {
		t.Fatal("done page must not carry a cursor")
	}
}

func TestFeedServiceFollowingRequiresViewer(t *testing.T) {
	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	_, err := svc.GetFeed(context.Background(), FeedVariantFollowing, nil, "", 10)
	if err == nil {
		t.Fatal("expected unauthenticated error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated app error, got %#v", err)
	}
}

func TestFeedServiceFollowingEmptyGraphShortCircuits(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listByAuthorsFn = func(context.Context, []uint, *repository.Cursor, int) ([]models.Post, error) {
		t.Fatal("must not query posts when the viewer follows nobody")
		return nil, nil
	}

	svc := newFeedService(postRepo, noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantFollowing, &models.User{ID: 1}, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !page.IsDone || len(page.Items) != 0 {
		t.Fatalf("expected empty done page, got %+v", page)
	}
}

func TestFeedServiceFollowingScopedToFollowedAuthors(t *testing.T) {
	followRepo := noopFollowRepo()
	followRepo.followedIDsFn = func(context.Context, uint) ([]uint, error) {
		return []uint{4, 9}, nil
	}
	postRepo := noopPostRepo()
	var gotAuthors []uint
	postRepo.listByAuthorsFn = func(_ context.Context, authorIDs []uint, _ *repository.Cursor, _ int) ([]models.Post, error) {
		gotAuthors = authorIDs
		return makePosts(1, 4), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 4}}, nil
	}

	svc := newFeedService(postRepo, userRepo, noopInteractionRepo(), followRepo)
	if _, err := svc.GetFeed(context.Background(), FeedVariantFollowing, &models.User{ID: 1}, "", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotAuthors) != 2 || gotAuthors[0] != 4 || gotAuthors[1] != 9 {
		t.Fatalf("expected authors [4 9], got %v", gotAuthors)
	}
}

func TestFeedServiceUnknownVariantRejected(t *testing.T) {
	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	_, err := svc.GetFeed(context.Background(), "trending", nil, "", 10)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestFeedServiceMalformedCursorRejected(t *testing.T) {
	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	_, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "not-a-cursor!!", 10)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestFeedServiceAnnotatesViewerFlags(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listAllFn = func(context.Context, *repository.Cursor, int) ([]models.Post, error) {
		return makePosts(3, 7), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7, Username: "alice"}}, nil
	}
	interactionRepo := noopInteractionRepo()
	interactionRepo.likedPostIDsFn = func(context.Context, uint, []uint) ([]uint, error) {
		return []uint{3}, nil
	}
	interactionRepo.savedPostIDsFn = func(context.Context, uint, []uint) ([]uint, error) {
		return []uint{2}, nil
	}

	svc := newFeedService(postRepo, userRepo, interactionRepo, noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantAll, &models.User{ID: 1}, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range page.Items {
		wantLiked := item.ID == 3
		wantSaved := item.ID == 2
		if item.Liked != wantLiked || item.Saved != wantSaved {
			t.Fatalf("item %d: liked=%v saved=%v", item.ID, item.Liked, item.Saved)
		}
	}
}

func TestFeedServiceAnonymousViewerSkipsFlagLookups(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listAllFn = func(context.Context, *repository.Cursor, int) ([]models.Post, error) {
		return makePosts(1, 7), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7}}, nil
	}
	interactionRepo := noopInteractionRepo()
	interactionRepo.likedPostIDsFn = func(context.Context, uint, []uint) ([]uint, error) {
		t.Fatal("anonymous feed must not look up liked posts")
		return nil, nil
	}

	svc := newFeedService(postRepo, userRepo, interactionRepo, noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items[0].Liked || page.Items[0].Saved {
		t.Fatal("anonymous items must not be flagged liked/saved")
	}
}

func TestFeedServiceMissingAuthorYieldsNilAuthor(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listAllFn = func(context.Context, *repository.Cursor, int) ([]models.Post, error) {
		return makePosts(1, 42), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return nil, nil
	}

	svc := newFeedService(postRepo, userRepo, noopInteractionRepo(), noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("post with a gone author must still be served, got %d items", len(page.Items))
	}
	if page.Items[0].Author != nil {
		t.Fatalf("expected nil author, got %+v", page.Items[0].Author)
	}
}

func TestFeedServiceGetSavedPostsDropsDeletedPosts(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	interactionRepo := noopInteractionRepo()
	interactionRepo.listSavesFn = func(context.Context, uint, *repository.Cursor, int) ([]models.Save, error) {
		return []models.Save{
			{ID: 3, PostID: 30, UserID: 1, CreatedAt: base},
			{ID: 2, PostID: 20, UserID: 1, CreatedAt: base.Add(-time.Minute)},
			{ID: 1, PostID: 10, UserID: 1, CreatedAt: base.Add(-2 * time.Minute)},
		}, nil
	}
	interactionRepo.savedPostIDsFn = func(_ context.Context, _ uint, postIDs []uint) ([]uint, error) {
		return postIDs, nil
	}
	postRepo := noopPostRepo()
	postRepo.getByIDsFn = func(context.Context, []uint) ([]models.Post, error) {
		// Post 20 was deleted after being saved.
		return []models.Post{{ID: 10, UserID: 7}, {ID: 30, UserID: 7}}, nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7}}, nil
	}

	svc := newFeedService(postRepo, userRepo, interactionRepo, noopFollowRepo())
	page, err := svc.GetSavedPosts(context.Background(), &models.User{ID: 1}, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected deleted post dropped, got %d items", len(page.Items))
	}
	if page.Items[0].ID != 30 || page.Items[1].ID != 10 {
		t.Fatalf("expected save order preserved, got %d then %d", page.Items[0].ID, page.Items[1].ID)
	}
	for _, item := range page.Items {
		if !item.Saved {
			t.Fatalf("saved listing item %d not flagged saved", item.ID)
		}
	}
}

func TestFeedServiceGetSavedPostsRequiresViewer(t *testing.T) {
	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	_, err := svc.GetSavedPosts(context.Background(), nil, "", 10)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated app error, got %#v", err)
	}
}

func TestFeedServiceSearchOffsetCursor(t *testing.T) {
	postRepo := noopPostRepo()
	var gotOffset int
	postRepo.searchFn = func(_ context.Context, _ string, limit, offset int) ([]models.Post, error) {
		gotOffset = offset
		return makePosts(limit, 7), nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDsFn = func(context.Context, []uint) ([]models.User, error) {
		return []models.User{{ID: 7}}, nil
	}

	svc := newFeedService(postRepo, userRepo, noopInteractionRepo(), noopFollowRepo())
	page, err := svc.SearchPosts(context.Background(), nil, "hello", "20", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 20 {
		t.Fatalf("expected offset 20, got %d", gotOffset)
	}
	if page.ContinueCursor == nil || *page.ContinueCursor != "30" {
		t.Fatalf("expected cursor \"30\", got %v", page.ContinueCursor)
	}
}

func TestFeedServiceSearchDisabledByFlag(t *testing.T) {
	svc := NewFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo(), featureflags.NewManager("search=off"))
	_, err := svc.SearchPosts(context.Background(), nil, "hello", "", 10)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeForbidden {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
}

func TestFeedServicePageSizeClamped(t *testing.T) {
	postRepo := noopPostRepo()
	var gotLimit int
	postRepo.listAllFn = func(_ context.Context, _ *repository.Cursor, limit int) ([]models.Post, error) {
		gotLimit = limit
		return nil, nil
	}

	svc := newFeedService(postRepo, noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	if _, err := svc.GetFeed(context.Background(), FeedVariantAll, nil, "", 10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != MaxPageSize+1 {
		t.Fatalf("expected clamped limit %d, got %d", MaxPageSize+1, gotLimit)
	}
}

func TestFeedServiceGetFeedEmitsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	orig := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = orig })

	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	if _, err := svc.GetFeed(context.Background(), "", nil, "", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected one span, got %d", len(ended))
	}
	span := ended[0]
	if span.Name() != "feed.get" {
		t.Fatalf("expected span feed.get, got %q", span.Name())
	}
	attrs := attributeMap(span.Attributes())
	if attrs["feed.variant"].AsString() != FeedVariantAll {
		t.Fatalf("expected feed.variant=all, got %v", attrs["feed.variant"])
	}
	if attrs["feed.page_size"].AsInt64() != 3 {
		t.Fatalf("expected feed.page_size=3, got %v", attrs["feed.page_size"])
	}
	if span.Status().Code != codes.Unset {
		t.Fatalf("expected unset status on success, got %v", span.Status().Code)
	}
}

func TestFeedServiceGetFeedSpanCarriesError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	orig := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = orig })

	svc := newFeedService(noopPostRepo(), noopUserRepo(), noopInteractionRepo(), noopFollowRepo())
	if _, err := svc.GetFeed(context.Background(), "trending", nil, "", 3); err == nil {
		t.Fatal("expected error for unknown variant")
	}

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected one span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", ended[0].Status().Code)
	}
}

func attributeMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[kv.Key] = kv.Value
	}
	return out
}
