// Package service implements the admin user-management operations. Every
// operation re-checks the caller's role; the HTTP middleware only proves the
// token is valid, not that it belongs to an admin.
package service

import (
	"context"
	"errors"

	authrepo "github.com/inkwell/blog-backend/internal/auth/repository"
	"github.com/inkwell/blog-backend/internal/authz"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

type AdminService struct {
	users         userrepo.Repository
	refreshTokens authrepo.RefreshTokenRepository
	log           *logger.Logger
}

func NewAdminService(users userrepo.Repository, refreshTokens authrepo.RefreshTokenRepository, log *logger.Logger) *AdminService {
	return &AdminService{
		users:         users,
		refreshTokens: refreshTokens,
		log:           log,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, claims jwtverify.Claims, limit, offset int) ([]userdomain.User, error) {
	if err := authz.RequireAdmin(claims); err != nil {
		return nil, err
	}
	return s.users.List(ctx, limit, offset)
}

// DeleteUser removes a user and all their live sessions. The user's posts,
// comments and notifications cascade in the database.
func (s *AdminService) DeleteUser(ctx context.Context, claims jwtverify.Claims, userID string) error {
	if err := authz.RequireAdmin(claims); err != nil {
		return err
	}

	entry := s.log.WithFields(ctx, logger.Fields{"action": "admin_delete_user", "admin_id": claims.UserID, "user_id": userID})

	if _, err := s.users.FindByID(ctx, userdomain.ID(userID)); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return commonerrors.ErrUserNotFound
		}
		return err
	}

	if err := s.refreshTokens.DeleteByUserID(ctx, userID); err != nil {
		entry.Errorf("refresh token purge failed: %v", err)
		return err
	}

	if err := s.users.Delete(ctx, userdomain.ID(userID)); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return commonerrors.ErrUserNotFound
		}
		entry.Errorf("user delete failed: %v", err)
		return err
	}

	entry.Info("user removed by admin")
	return nil
}
