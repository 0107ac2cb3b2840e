package service

import (
	"context"
	"errors"

	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

// ProfileService exposes the public slice of a user record: no email, no
// role, no hash.
type ProfileService struct {
	users userrepo.Repository
}

func NewProfileService(users userrepo.Repository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, id string) (userdomain.Profile, error) {
	user, err := s.users.FindByID(ctx, userdomain.ID(id))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.Profile{}, commonerrors.ErrUserNotFound
		}
		return userdomain.Profile{}, err
	}

	return userdomain.Profile{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}, nil
}
