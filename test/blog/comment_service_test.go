package blog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	notifdomain "github.com/inkwell/blog-backend/internal/notification/domain"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

func TestCommentService_Create_NotifiesPostAuthor(t *testing.T) {
	svc, comments, posts, notifier := setupCommentService(t)

	posts.findByIDFunc = func(ctx context.Context, id string) (domain.Post, error) {
		return domain.Post{ID: id, AuthorID: "user-a", Title: "My post", IsPublished: true}, nil
	}
	comments.createFunc = func(ctx context.Context, comment domain.Comment) error {
		return nil
	}

	claims := claimsFor("user-b", "bob", string(userdomain.RoleUser))
	comment, err := svc.Create(context.Background(), claims, "p1", "nice post")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if comment.AuthorID != "user-b" {
		t.Errorf("expected author user-b, got %s", comment.AuthorID)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.userID != "user-a" {
		t.Errorf("expected post author to be notified, got %s", call.userID)
	}
	if call.notificationType != notifdomain.TypeComment {
		t.Errorf("expected comment notification, got %s", call.notificationType)
	}
	if !strings.Contains(call.message, "bob") {
		t.Errorf("expected message to mention commenter, got %q", call.message)
	}
}

func TestCommentService_Create_OwnPostNoNotification(t *testing.T) {
	svc, _, posts, notifier := setupCommentService(t)

	posts.findByIDFunc = func(ctx context.Context, id string) (domain.Post, error) {
		return domain.Post{ID: id, AuthorID: "user-a", IsPublished: true}, nil
	}

	claims := claimsFor("user-a", "alice", string(userdomain.RoleUser))
	if _, err := svc.Create(context.Background(), claims, "p1", "note to self"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(notifier.calls) != 0 {
		t.Errorf("expected no notification for own post, got %d", len(notifier.calls))
	}
}

func TestCommentService_Create_NotificationFailureDoesNotFailComment(t *testing.T) {
	svc, _, posts, notifier := setupCommentService(t)

	posts.findByIDFunc = func(ctx context.Context, id string) (domain.Post, error) {
		return domain.Post{ID: id, AuthorID: "user-a", IsPublished: true}, nil
	}
	notifier.err = errors.New("notification store down")

	claims := claimsFor("user-b", "bob", string(userdomain.RoleUser))
	if _, err := svc.Create(context.Background(), claims, "p1", "still works"); err != nil {
		t.Fatalf("comment should survive notification failure, got %v", err)
	}
}

func TestCommentService_Create_MissingPost(t *testing.T) {
	svc, _, _, _ := setupCommentService(t)

	claims := claimsFor("user-b", "bob", string(userdomain.RoleUser))
	_, err := svc.Create(context.Background(), claims, "p-missing", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "POST_NOT_FOUND" {
		t.Errorf("expected POST_NOT_FOUND, got %v", err)
	}
}

func TestCommentService_ListByPost_DraftHiddenFromOthers(t *testing.T) {
	svc, comments, posts, _ := setupCommentService(t)

	posts.findByIDFunc = func(ctx context.Context, id string) (domain.Post, error) {
		return domain.Post{ID: id, AuthorID: "user-a", IsPublished: false}, nil
	}
	comments.listByPostIDFunc = func(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error) {
		return []domain.Comment{{ID: "c1", PostID: postID}}, nil
	}

	// The author still reads their own draft's comments.
	owner := claimsFor("user-a", "alice", string(userdomain.RoleUser))
	if _, err := svc.ListByPost(context.Background(), owner, "p1", 20, 0); err != nil {
		t.Errorf("author should list own draft comments, got %v", err)
	}

	// Anyone else gets the same 404 a missing post would produce, so the
	// draft's existence does not leak through its comment list.
	stranger := claimsFor("user-b", "bob", string(userdomain.RoleUser))
	_, err := svc.ListByPost(context.Background(), stranger, "p1", 20, 0)
	if err == nil {
		t.Fatal("expected draft comment list to be hidden")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "POST_NOT_FOUND" {
		t.Errorf("expected POST_NOT_FOUND, got %v", err)
	}
}

func TestCommentService_Update_NonOwnerForbidden(t *testing.T) {
	svc, comments, _, _ := setupCommentService(t)

	comments.findByIDFunc = func(ctx context.Context, id string) (domain.Comment, error) {
		return domain.Comment{ID: id, AuthorID: "user-a", Content: "original"}, nil
	}

	claims := claimsFor("user-b", "bob", string(userdomain.RoleUser))
	_, err := svc.Update(context.Background(), claims, "c1", "defaced")
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestCommentService_Delete_AdminAllowed(t *testing.T) {
	svc, comments, _, _ := setupCommentService(t)

	comments.findByIDFunc = func(ctx context.Context, id string) (domain.Comment, error) {
		return domain.Comment{ID: id, AuthorID: "user-a"}, nil
	}

	deleted := false
	comments.deleteFunc = func(ctx context.Context, id string) error {
		deleted = true
		return nil
	}

	claims := claimsFor("admin-1", "root", string(userdomain.RoleAdmin))
	if err := svc.Delete(context.Background(), claims, "c1"); err != nil {
		t.Fatalf("expected admin delete to succeed, got %v", err)
	}
	if !deleted {
		t.Error("expected delete to reach the repository")
	}
}
