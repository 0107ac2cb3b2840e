package auth

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/inkwell/blog-backend/internal/auth/domain"
	authrepo "github.com/inkwell/blog-backend/internal/auth/repository"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, users, refreshTokens, _, _, mockClock := setupAuthService(t)

	users.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, Username: "alice", Role: userdomain.RoleUser}, nil
	}

	raw := "opaque-refresh-token"
	consumed := false
	refreshTokens.consumeFunc = func(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
		if hash != crypto.HashToken(raw) {
			t.Errorf("expected lookup by hash, got %s", hash)
		}
		consumed = true
		return authdomain.RefreshToken{
			ID:        "rt-1",
			TokenHash: hash,
			UserID:    "user-1",
			ExpiresAt: mockClock.Now().Add(time.Hour),
			CreatedAt: mockClock.Now().Add(-time.Hour),
		}, nil
	}

	var newStoredHash string
	refreshTokens.createFunc = func(ctx context.Context, token authdomain.RefreshToken) error {
		newStoredHash = token.TokenHash
		return nil
	}

	_, pair, err := svc.Refresh(context.Background(), raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !consumed {
		t.Error("expected old token to be consumed")
	}
	if pair.RefreshToken == raw {
		t.Error("expected a new refresh token, got the old one back")
	}
	if newStoredHash == "" || newStoredHash == crypto.HashToken(raw) {
		t.Error("expected a fresh token hash to be stored")
	}
	if pair.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestAuthService_Refresh_UsedTokenCannotBeReplayed(t *testing.T) {
	svc, users, refreshTokens, _, _, mockClock := setupAuthService(t)

	users.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, Username: "alice"}, nil
	}

	// First use consumes; second use finds nothing.
	calls := 0
	refreshTokens.consumeFunc = func(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
		calls++
		if calls == 1 {
			return authdomain.RefreshToken{
				UserID:    "user-1",
				ExpiresAt: mockClock.Now().Add(time.Hour),
			}, nil
		}
		return authdomain.RefreshToken{}, authrepo.ErrRefreshTokenNotFound
	}

	if _, _, err := svc.Refresh(context.Background(), "token"); err != nil {
		t.Fatalf("first refresh should succeed, got %v", err)
	}

	_, _, err := svc.Refresh(context.Background(), "token")
	if err == nil {
		t.Fatal("expected replayed refresh token to be rejected")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "INVALID_REFRESH_TOKEN" {
		t.Errorf("expected INVALID_REFRESH_TOKEN, got %v", err)
	}
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	svc, _, refreshTokens, _, _, mockClock := setupAuthService(t)

	refreshTokens.consumeFunc = func(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
		return authdomain.RefreshToken{
			UserID:    "user-1",
			ExpiresAt: mockClock.Now().Add(-time.Minute),
		}, nil
	}

	_, _, err := svc.Refresh(context.Background(), "token")
	if err == nil {
		t.Fatal("expected expired refresh token to be rejected")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "REFRESH_TOKEN_EXPIRED" {
		t.Errorf("expected REFRESH_TOKEN_EXPIRED, got %v", err)
	}
}

func TestAuthService_Logout_RevokesBothTokens(t *testing.T) {
	svc, users, refreshTokens, revokedTokens, _, mockClock := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)
	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("token should validate, got %v", err)
	}

	refreshDeleted := false
	refreshTokens.deleteByTokenHashFunc = func(ctx context.Context, hash string) error {
		refreshDeleted = true
		return nil
	}

	var revokedJTI string
	var revokedUntil time.Time
	revokedTokens.revokeFunc = func(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
		revokedJTI = jti
		revokedUntil = expiresAt
		return nil
	}

	if err := svc.Logout(context.Background(), "refresh-token", claims); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !refreshDeleted {
		t.Error("expected refresh token to be deleted")
	}
	if revokedJTI != claims.JTI {
		t.Errorf("expected jti %s to be denylisted, got %s", claims.JTI, revokedJTI)
	}
	if !revokedUntil.After(mockClock.Now()) {
		t.Error("expected denylist entry to last until token expiry")
	}
}

func TestAuthService_DeleteAccount_RevokesAndDeletes(t *testing.T) {
	svc, users, refreshTokens, revokedTokens, _, _ := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)
	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("token should validate, got %v", err)
	}

	revoked := false
	revokedTokens.revokeFunc = func(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
		revoked = true
		return nil
	}

	var purgedUserID string
	refreshTokens.deleteByUserIDFunc = func(ctx context.Context, userID string) error {
		purgedUserID = userID
		return nil
	}

	var deletedID userdomain.ID
	users.deleteFunc = func(ctx context.Context, id userdomain.ID) error {
		deletedID = id
		return nil
	}

	if err := svc.DeleteAccount(context.Background(), claims); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !revoked {
		t.Error("expected access token to be denylisted")
	}
	if purgedUserID != claims.UserID {
		t.Errorf("expected refresh tokens of %s to be purged, got %q", claims.UserID, purgedUserID)
	}
	if string(deletedID) != claims.UserID {
		t.Errorf("expected user %s to be deleted, got %s", claims.UserID, deletedID)
	}
}
