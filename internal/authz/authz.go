// Package authz decides whether an authenticated identity may act on a
// resource. Decisions are pure: callers load the resource first, then ask.
package authz

import (
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/observability/metrics"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Owned is implemented by any resource that belongs to a single user.
type Owned interface {
	OwnerID() string
	ResourceName() string
}

// Authorize grants mutation to the owner and to admins, and denies everyone
// else with ErrForbidden. Existence of the resource is the caller's problem;
// by the time authz runs, a 404 has already been ruled out.
func Authorize(claims jwtverify.Claims, resource Owned, action Action) error {
	if action == ActionRead {
		return nil
	}
	if claims.UserID == resource.OwnerID() {
		return nil
	}
	if claims.Role == string(userdomain.RoleAdmin) {
		return nil
	}

	metrics.AuthorizationDenied.WithLabelValues(resource.ResourceName(), string(action)).Inc()
	return commonerrors.ErrForbidden
}

// RequireAdmin guards endpoints that have no single owned resource, like the
// user-management surface.
func RequireAdmin(claims jwtverify.Claims) error {
	if claims.Role == string(userdomain.RoleAdmin) {
		return nil
	}
	metrics.AuthorizationDenied.WithLabelValues("admin", "manage").Inc()
	return commonerrors.ErrForbidden
}
