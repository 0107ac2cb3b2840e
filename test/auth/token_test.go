package auth

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell/blog-backend/internal/auth/service"
	"github.com/inkwell/blog-backend/internal/common/clock"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

func loginAndGetToken(t *testing.T, svc *service.AuthService) string {
	t.Helper()
	_, pair, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "alice",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return pair.AccessToken
}

func withAlice(users *mockUserRepo) {
	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		return userdomain.User{ID: "user-1", Username: "alice", PasswordHash: "hashed:password123", Role: userdomain.RoleUser}, nil
	}
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected alice, got %s", claims.Username)
	}
	if claims.Role != string(userdomain.RoleUser) {
		t.Errorf("expected role user, got %s", claims.Role)
	}
	if claims.JTI == "" {
		t.Error("expected jti to be set")
	}
}

func TestValidateAccessToken_TamperedByteRejected(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)

	// Flip one byte in the payload section.
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'a' {
		raw[mid] = 'b'
	} else {
		raw[mid] = 'a'
	}

	_, err := svc.ValidateAccessToken(context.Background(), string(raw))
	if err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestValidateAccessToken_WrongSecretRejected(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)

	other := service.NewAuthService(
		users,
		&mockRefreshTokenRepo{},
		&mockRevokedTokenRepo{},
		&mockHasher{},
		&mockIDGenerator{},
		clock.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)),
		service.Config{
			JWTSecret:      []byte("another-secret-another-secret-ok"),
			AccessTokenTTL: time.Hour,
		},
		testLogger(t),
	)

	if _, err := other.ValidateAccessToken(context.Background(), token); err == nil {
		t.Fatal("expected token signed with a different secret to be rejected")
	}
}

func TestValidateAccessToken_ShortTTLExpires(t *testing.T) {
	users := &mockUserRepo{}
	withAlice(users)
	mockClock := clock.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	svc := service.NewAuthService(
		users,
		&mockRefreshTokenRepo{},
		&mockRevokedTokenRepo{},
		&mockHasher{},
		&mockIDGenerator{},
		mockClock,
		service.Config{
			JWTSecret:      []byte(testJWTSecret),
			AccessTokenTTL: 1 * time.Second,
		},
		testLogger(t),
	)

	token := loginAndGetToken(t, svc)

	if _, err := svc.ValidateAccessToken(context.Background(), token); err != nil {
		t.Fatalf("expected token valid before expiry, got %v", err)
	}

	mockClock.Advance(2 * time.Second)

	_, err := svc.ValidateAccessToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN for expired token, got %v", err)
	}
}

func TestValidateAccessToken_RevokedJTIRejected(t *testing.T) {
	svc, users, _, revokedTokens, _, _ := setupAuthService(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)

	revokedTokens.isRevokedFunc = func(ctx context.Context, jti string) (bool, error) {
		return true, nil
	}

	_, err := svc.ValidateAccessToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected revoked token to be rejected")
	}
	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN for revoked token, got %v", err)
	}
}

func TestParseToken_GarbageRejected(t *testing.T) {
	for _, garbage := range []string{"", "not.a.jwt", "a.b", "%%%"} {
		if _, err := jwtverify.ParseToken(garbage, []byte(testJWTSecret)); err == nil {
			t.Errorf("expected %q to be rejected", garbage)
		}
	}
}
