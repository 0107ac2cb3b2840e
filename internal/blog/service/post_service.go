package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell/blog-backend/internal/authz"
	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/blog/repository"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	"github.com/inkwell/blog-backend/internal/observability/metrics"
)

type PostInput struct {
	Title       string
	Content     string
	CategoryID  string
	TagIDs      []string
	IsPublished bool
}

type PostService struct {
	posts       repository.PostRepository
	categories  repository.CategoryRepository
	tags        repository.TagRepository
	idGenerator crypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	idGenerator crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *PostService {
	return &PostService{
		posts:       posts,
		categories:  categories,
		tags:        tags,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

func (s *PostService) Create(ctx context.Context, claims jwtverify.Claims, input PostInput) (domain.Post, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "create_post", "user_id": claims.UserID})

	if err := s.checkReferences(ctx, input); err != nil {
		return domain.Post{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Post{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	post := domain.Post{
		ID:          id,
		AuthorID:    claims.UserID,
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		CategoryID:  input.CategoryID,
		IsPublished: input.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.posts.Create(ctx, post, input.TagIDs); err != nil {
		entry.Errorf("post insert failed: %v", err)
		return domain.Post{}, err
	}

	created, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}

	metrics.PostsCreated.Inc()
	entry.Infof("post created id=%s", id)
	return created, nil
}

// Get returns a post. Drafts are visible only to their author and admins;
// everyone else gets the same 404 as for a missing post.
func (s *PostService) Get(ctx context.Context, claims jwtverify.Claims, id string) (domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
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

func (s *PostService) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	return s.posts.List(ctx, filter)
}

func (s *PostService) Update(ctx context.Context, claims jwtverify.Claims, id string, input PostInput) (domain.Post, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "update_post", "user_id": claims.UserID, "post_id": id})

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, err
	}

	if err := authz.Authorize(claims, post, authz.ActionUpdate); err != nil {
		entry.Warn("update denied")
		return domain.Post{}, err
	}

	if err := s.checkReferences(ctx, input); err != nil {
		return domain.Post{}, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	post.CategoryID = input.CategoryID
	post.IsPublished = input.IsPublished
	post.UpdatedAt = s.clock.Now().UTC()

	if err := s.posts.Update(ctx, post, input.TagIDs); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		entry.Errorf("post update failed: %v", err)
		return domain.Post{}, err
	}

	updated, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}

	entry.Info("post updated")
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, claims jwtverify.Claims, id string) error {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "delete_post", "user_id": claims.UserID, "post_id": id})

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return commonerrors.ErrPostNotFound
		}
		return err
	}

	if err := authz.Authorize(claims, post, authz.ActionDelete); err != nil {
		entry.Warn("delete denied")
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return commonerrors.ErrPostNotFound
		}
		entry.Errorf("post delete failed: %v", err)
		return err
	}

	metrics.PostsDeleted.Inc()
	entry.Info("post deleted")
	return nil
}

func (s *PostService) checkReferences(ctx context.Context, input PostInput) error {
	if input.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return commonerrors.ErrCategoryNotFound
			}
			return err
		}
	}

	if len(input.TagIDs) > 0 {
		found, err := s.tags.FindByIDs(ctx, input.TagIDs)
		if err != nil {
			return err
		}
		if len(found) != len(uniqueStrings(input.TagIDs)) {
			return commonerrors.ErrTagNotFound
		}
	}
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
