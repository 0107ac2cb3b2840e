package service

import (
	"context"
	"strings"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/blog/repository"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

// TaxonomyService manages the two flat vocabularies posts are filed under.
type TaxonomyService struct {
	categories  repository.CategoryRepository
	tags        repository.TagRepository
	idGenerator crypto.IDGenerator
	log         *logger.Logger
}

func NewTaxonomyService(
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	idGenerator crypto.IDGenerator,
	log *logger.Logger,
) *TaxonomyService {
	return &TaxonomyService{
		categories:  categories,
		tags:        tags,
		idGenerator: idGenerator,
		log:         log,
	}
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Category{}, commonerrors.ErrInternalError.WithCause(err)
	}

	category := domain.Category{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return domain.Category{}, err
	}

	s.log.WithFields(ctx, logger.Fields{"action": "create_category"}).Infof("category created id=%s", id)
	return category, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *TaxonomyService) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Tag{}, commonerrors.ErrInternalError.WithCause(err)
	}

	tag := domain.Tag{
		ID:   id,
		Name: strings.ToLower(strings.TrimSpace(name)),
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return domain.Tag{}, err
	}

	s.log.WithFields(ctx, logger.Fields{"action": "create_tag"}).Infof("tag created id=%s", id)
	return tag, nil
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}
