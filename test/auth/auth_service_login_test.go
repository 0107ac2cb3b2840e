package auth

import (
	"context"
	"testing"

	authdomain "github.com/inkwell/blog-backend/internal/auth/domain"
	"github.com/inkwell/blog-backend/internal/auth/service"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, refreshTokens, _, _, mockClock := setupAuthService(t)

	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		if identifier != "alice" {
			t.Errorf("expected identifier alice, got %s", identifier)
		}
		return userdomain.User{
			ID:           "user-1",
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "hashed:password123",
			Role:         userdomain.RoleUser,
			CreatedAt:    mockClock.Now(),
		}, nil
	}

	var storedHash string
	refreshTokens.createFunc = func(ctx context.Context, token authdomain.RefreshToken) error {
		storedHash = token.TokenHash
		return nil
	}

	user, pair, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "alice",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("expected user alice, got %s", user.Username)
	}
	if pair.AccessToken == "" {
		t.Error("expected access token")
	}
	if pair.RefreshToken == "" {
		t.Error("expected refresh token")
	}
	if storedHash == pair.RefreshToken {
		t.Error("refresh token stored in plaintext")
	}
	if !pair.AccessExpiresAt.After(mockClock.Now()) {
		t.Error("expected access expiry in the future")
	}
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)

	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		if identifier != "alice@example.com" {
			t.Errorf("expected email identifier, got %s", identifier)
		}
		return userdomain.User{ID: "user-1", Username: "alice", PasswordHash: "hashed:password123"}, nil
	}

	_, pair, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "alice@example.com",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("expected access token")
	}
}

func TestAuthService_Login_EmailCaseInsensitive(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)

	// The store holds emails lowercased and matches exactly, the way the SQL
	// repository does. Registering with a mixed-case email and logging in
	// with the very same string must still succeed.
	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		if identifier != "alice@example.com" {
			return userdomain.User{}, userrepo.ErrUserNotFound
		}
		return userdomain.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hashed:password123"}, nil
	}

	_, pair, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "Alice@Example.COM",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("login with mixed-case email failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("expected access token")
	}

	// Username matching stays case-sensitive.
	_, _, err = svc.Login(context.Background(), service.LoginInput{
		Identifier: "ALICE",
		Password:   "password123",
	})
	if err == nil {
		t.Error("expected uppercase username to miss")
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svcA, usersA, _, _, _, _ := setupAuthService(t)
	usersA.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		return userdomain.User{ID: "user-1", Username: "alice", PasswordHash: "hashed:password123"}, nil
	}
	_, _, errWrongPassword := svcA.Login(context.Background(), service.LoginInput{
		Identifier: "alice",
		Password:   "wrongpass9",
	})

	svcB, usersB, _, _, _, _ := setupAuthService(t)
	usersB.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	_, _, errUnknownUser := svcB.Login(context.Background(), service.LoginInput{
		Identifier: "nobody",
		Password:   "password123",
	})

	wrongErr, okA := commonerrors.AsDomainError(errWrongPassword)
	unknownErr, okB := commonerrors.AsDomainError(errUnknownUser)
	if !okA || !okB {
		t.Fatalf("expected domain errors, got %v and %v", errWrongPassword, errUnknownUser)
	}

	if wrongErr.Code() != unknownErr.Code() || wrongErr.Message() != unknownErr.Message() || wrongErr.HTTPStatus() != unknownErr.HTTPStatus() {
		t.Errorf("error shapes differ: %v vs %v", wrongErr, unknownErr)
	}
	if wrongErr.Code() != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", wrongErr.Code())
	}
}

func TestAuthService_Login_UnknownUserStillRunsCompare(t *testing.T) {
	svc, users, _, _, hasher, _ := setupAuthService(t)

	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}

	_, _, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "nobody",
		Password:   "password123",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if hasher.compares != 1 {
		t.Errorf("expected one dummy compare, got %d", hasher.compares)
	}
}

func TestAuthService_Login_SessionCapEvictsOldest(t *testing.T) {
	svc, users, refreshTokens, _, _, _ := setupAuthService(t)

	users.findByIdentifierFunc = func(ctx context.Context, identifier string) (userdomain.User, error) {
		return userdomain.User{ID: "user-1", Username: "alice", PasswordHash: "hashed:password123"}, nil
	}

	refreshTokens.countByUserIDFunc = func(ctx context.Context, userID string) (int, error) {
		return 5, nil
	}

	evicted := false
	refreshTokens.deleteOldestByUserIDFunc = func(ctx context.Context, userID string) error {
		evicted = true
		return nil
	}

	_, _, err := svc.Login(context.Background(), service.LoginInput{
		Identifier: "alice",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !evicted {
		t.Error("expected oldest refresh token to be evicted at the cap")
	}
}
