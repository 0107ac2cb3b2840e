package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwell/blog-backend/internal/authz"
	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/blog/repository"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	notifdomain "github.com/inkwell/blog-backend/internal/notification/domain"
	"github.com/inkwell/blog-backend/internal/observability/metrics"
)

// Notifier decouples comment creation from notification storage.
type Notifier interface {
	Notify(ctx context.Context, userID, notificationType, message string) error
}

type CommentService struct {
	comments    repository.CommentRepository
	posts       repository.PostRepository
	notifier    Notifier
	idGenerator crypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	notifier Notifier,
	idGenerator crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *CommentService {
	return &CommentService{
		comments:    comments,
		posts:       posts,
		notifier:    notifier,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

func (s *CommentService) Create(ctx context.Context, claims jwtverify.Claims, postID, content string) (domain.Comment, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "create_comment", "user_id": claims.UserID, "post_id": postID})

	post, err := s.visiblePost(ctx, claims, postID)
	if err != nil {
		return domain.Comment{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Comment{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	comment := domain.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  claims.UserID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		entry.Errorf("comment insert failed: %v", err)
		return domain.Comment{}, err
	}

	metrics.CommentsCreated.Inc()
	entry.Infof("comment created id=%s", id)

	// Commenting on your own post does not notify. A failed notification
	// never fails the comment.
	if s.notifier != nil && post.AuthorID != claims.UserID {
		message := fmt.Sprintf("%s commented on your post %q", claims.Username, post.Title)
		if err := s.notifier.Notify(ctx, post.AuthorID, notifdomain.TypeComment, message); err != nil {
			entry.Warnf("comment notification failed: %v", err)
		}
	}

	return comment, nil
}

func (s *CommentService) ListByPost(ctx context.Context, claims jwtverify.Claims, postID string, limit, offset int) ([]domain.Comment, error) {
	if _, err := s.visiblePost(ctx, claims, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPostID(ctx, postID, limit, offset)
}

// visiblePost loads a post and hides drafts from everyone but the author and
// admins, with the same 404 a missing post would get.
func (s *CommentService) visiblePost(ctx context.Context, claims jwtverify.Claims, postID string) (domain.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, err
	}
	if !post.IsPublished {
		if err := authz.Authorize(claims, post, authz.ActionUpdate); err != nil {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
	}
	return post, nil
}

func (s *CommentService) Update(ctx context.Context, claims jwtverify.Claims, id, content string) (domain.Comment, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "update_comment", "user_id": claims.UserID, "comment_id": id})

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return domain.Comment{}, commonerrors.ErrCommentNotFound
		}
		return domain.Comment{}, err
	}

	if err := authz.Authorize(claims, comment, authz.ActionUpdate); err != nil {
		entry.Warn("update denied")
		return domain.Comment{}, err
	}

	comment.Content = content
	comment.UpdatedAt = s.clock.Now().UTC()

	if err := s.comments.Update(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return domain.Comment{}, commonerrors.ErrCommentNotFound
		}
		entry.Errorf("comment update failed: %v", err)
		return domain.Comment{}, err
	}

	entry.Info("comment updated")
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, claims jwtverify.Claims, id string) error {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "delete_comment", "user_id": claims.UserID, "comment_id": id})

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return commonerrors.ErrCommentNotFound
		}
		return err
	}

	if err := authz.Authorize(claims, comment, authz.ActionDelete); err != nil {
		entry.Warn("delete denied")
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return commonerrors.ErrCommentNotFound
		}
		entry.Errorf("comment delete failed: %v", err)
		return err
	}

	metrics.CommentsDeleted.Inc()
	entry.Info("comment deleted")
	return nil
}
