package blog

import (
	"testing"

	"github.com/inkwell/blog-backend/internal/authz"
	"github.com/inkwell/blog-backend/internal/blog/domain"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

func TestAuthorize_OwnerMayMutate(t *testing.T) {
	post := domain.Post{ID: "p1", AuthorID: "user-a"}
	claims := claimsFor("user-a", "alice", string(userdomain.RoleUser))

	for _, action := range []authz.Action{authz.ActionUpdate, authz.ActionDelete} {
		if err := authz.Authorize(claims, post, action); err != nil {
			t.Errorf("owner denied %s: %v", action, err)
		}
	}
}

func TestAuthorize_StrangerMayOnlyRead(t *testing.T) {
	post := domain.Post{ID: "p1", AuthorID: "user-a"}
	claims := claimsFor("user-b", "bob", string(userdomain.RoleUser))

	if err := authz.Authorize(claims, post, authz.ActionRead); err != nil {
		t.Errorf("read denied: %v", err)
	}

	for _, action := range []authz.Action{authz.ActionUpdate, authz.ActionDelete} {
		err := authz.Authorize(claims, post, action)
		if err == nil {
			t.Errorf("expected %s by non-owner to be denied", action)
			continue
		}
		domainErr, ok := commonerrors.AsDomainError(err)
		if !ok || domainErr.Code() != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
		if domainErr.HTTPStatus() != 403 {
			t.Errorf("expected 403, got %d", domainErr.HTTPStatus())
		}
	}
}

func TestAuthorize_AdminOverride(t *testing.T) {
	comment := domain.Comment{ID: "c1", AuthorID: "user-a"}
	claims := claimsFor("admin-1", "root", string(userdomain.RoleAdmin))

	for _, action := range []authz.Action{authz.ActionUpdate, authz.ActionDelete} {
		if err := authz.Authorize(claims, comment, action); err != nil {
			t.Errorf("admin denied %s: %v", action, err)
		}
	}
}
