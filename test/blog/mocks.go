package blog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	blogrepo "github.com/inkwell/blog-backend/internal/blog/repository"
	blogservice "github.com/inkwell/blog-backend/internal/blog/service"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

type mockPostRepo struct {
	createFunc   func(ctx context.Context, post domain.Post, tagIDs []string) error
	findByIDFunc func(ctx context.Context, id string) (domain.Post, error)
	listFunc     func(ctx context.Context, filter blogrepo.PostFilter) ([]domain.Post, error)
	updateFunc   func(ctx context.Context, post domain.Post, tagIDs []string) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post, tagIDs []string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, post, tagIDs)
	}
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (domain.Post, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Post{}, blogrepo.ErrPostNotFound
}

func (m *mockPostRepo) List(ctx context.Context, filter blogrepo.PostFilter) ([]domain.Post, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []domain.Post{}, nil
}

func (m *mockPostRepo) Update(ctx context.Context, post domain.Post, tagIDs []string) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, post, tagIDs)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockCommentRepo struct {
	createFunc       func(ctx context.Context, comment domain.Comment) error
	findByIDFunc     func(ctx context.Context, id string) (domain.Comment, error)
	listByPostIDFunc func(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error)
	updateFunc       func(ctx context.Context, comment domain.Comment) error
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockCommentRepo) Create(ctx context.Context, comment domain.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id string) (domain.Comment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Comment{}, blogrepo.ErrCommentNotFound
}

func (m *mockCommentRepo) ListByPostID(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error) {
	if m.listByPostIDFunc != nil {
		return m.listByPostIDFunc(ctx, postID, limit, offset)
	}
	return []domain.Comment{}, nil
}

func (m *mockCommentRepo) Update(ctx context.Context, comment domain.Comment) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockCategoryRepo struct {
	createFunc   func(ctx context.Context, category domain.Category) error
	findByIDFunc func(ctx context.Context, id string) (domain.Category, error)
	listFunc     func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category domain.Category) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (domain.Category, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Category{}, blogrepo.ErrCategoryNotFound
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []domain.Category{}, nil
}

type mockTagRepo struct {
	createFunc    func(ctx context.Context, tag domain.Tag) error
	findByIDsFunc func(ctx context.Context, ids []string) ([]domain.Tag, error)
	listFunc      func(ctx context.Context) ([]domain.Tag, error)
}

func (m *mockTagRepo) Create(ctx context.Context, tag domain.Tag) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tag)
	}
	return nil
}

func (m *mockTagRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Tag, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	tags := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, domain.Tag{ID: id, Name: "tag-" + id})
	}
	return tags, nil
}

func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []domain.Tag{}, nil
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

type notifyCall struct {
	userID           string
	notificationType string
	message          string
}

func (m *mockNotifier) Notify(ctx context.Context, userID, notificationType, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, notifyCall{userID, notificationType, message})
	return m.err
}

type mockIDGenerator struct {
	counter int
}

func (m *mockIDGenerator) NewID() (string, error) {
	m.counter++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.counter), nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func testClock() *clock.MockClock {
	return clock.NewMockClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
}

func claimsFor(userID, username, role string) jwtverify.Claims {
	return jwtverify.Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		JTI:      "jti-" + userID,
	}
}

func setupPostService(t *testing.T) (*blogservice.PostService, *mockPostRepo, *mockCategoryRepo, *mockTagRepo) {
	t.Helper()
	posts := &mockPostRepo{}
	categories := &mockCategoryRepo{}
	tags := &mockTagRepo{}
	svc := blogservice.NewPostService(posts, categories, tags, &mockIDGenerator{}, testClock(), testLogger(t))
	return svc, posts, categories, tags
}

func setupCommentService(t *testing.T) (*blogservice.CommentService, *mockCommentRepo, *mockPostRepo, *mockNotifier) {
	t.Helper()
	comments := &mockCommentRepo{}
	posts := &mockPostRepo{}
	notifier := &mockNotifier{}
	svc := blogservice.NewCommentService(comments, posts, notifier, &mockIDGenerator{}, testClock(), testLogger(t))
	return svc, comments, posts, notifier
}
