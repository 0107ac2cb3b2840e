package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	authdomain "github.com/inkwell/blog-backend/internal/auth/domain"
	authrepo "github.com/inkwell/blog-backend/internal/auth/repository"
	"github.com/inkwell/blog-backend/internal/auth/service"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/logger"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type mockUserRepo struct {
	createFunc           func(ctx context.Context, user userdomain.User) error
	findByIDFunc         func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findByIdentifierFunc func(ctx context.Context, identifier string) (userdomain.User, error)
	listFunc             func(ctx context.Context, limit, offset int) ([]userdomain.User, error)
	deleteFunc           func(ctx context.Context, id userdomain.ID) error
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByIdentifier(ctx context.Context, identifier string) (userdomain.User, error) {
	if m.findByIdentifierFunc != nil {
		return m.findByIdentifierFunc(ctx, identifier)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]userdomain.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []userdomain.User{}, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id userdomain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockRefreshTokenRepo struct {
	createFunc               func(ctx context.Context, token authdomain.RefreshToken) error
	consumeFunc              func(ctx context.Context, hash string) (authdomain.RefreshToken, error)
	deleteByTokenHashFunc    func(ctx context.Context, hash string) error
	deleteByUserIDFunc       func(ctx context.Context, userID string) error
	countByUserIDFunc        func(ctx context.Context, userID string) (int, error)
	deleteOldestByUserIDFunc func(ctx context.Context, userID string) error
	deleteExpiredFunc        func(ctx context.Context) (int64, error)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token authdomain.RefreshToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) Consume(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
	if m.consumeFunc != nil {
		return m.consumeFunc(ctx, hash)
	}
	return authdomain.RefreshToken{}, authrepo.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepo) DeleteByTokenHash(ctx context.Context, hash string) error {
	if m.deleteByTokenHashFunc != nil {
		return m.deleteByTokenHashFunc(ctx, hash)
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	if m.countByUserIDFunc != nil {
		return m.countByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockRefreshTokenRepo) DeleteOldestByUserID(ctx context.Context, userID string) error {
	if m.deleteOldestByUserIDFunc != nil {
		return m.deleteOldestByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockRevokedTokenRepo struct {
	revokeFunc        func(ctx context.Context, jti string, userID string, expiresAt time.Time) error
	isRevokedFunc     func(ctx context.Context, jti string) (bool, error)
	deleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *mockRevokedTokenRepo) Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, jti, userID, expiresAt)
	}
	return nil
}

func (m *mockRevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(ctx, jti)
	}
	return false, nil
}

func (m *mockRevokedTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

// mockHasher hashes by prefixing; good enough for everything except the
// bcrypt property tests, which use the real hasher.
type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
	compares    int
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	m.compares++
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type mockIDGenerator struct {
	counter int
}

func (m *mockIDGenerator) NewID() (string, error) {
	m.counter++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.counter), nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func setupAuthService(t *testing.T) (*service.AuthService, *mockUserRepo, *mockRefreshTokenRepo, *mockRevokedTokenRepo, *mockHasher, *clock.MockClock) {
	t.Helper()

	users := &mockUserRepo{}
	refreshTokens := &mockRefreshTokenRepo{}
	revokedTokens := &mockRevokedTokenRepo{}
	hasher := &mockHasher{}
	mockClock := clock.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	svc := service.NewAuthService(
		users,
		refreshTokens,
		revokedTokens,
		hasher,
		&mockIDGenerator{},
		mockClock,
		service.Config{
			JWTSecret:               []byte(testJWTSecret),
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTL:         7 * 24 * time.Hour,
			MaxRefreshTokensPerUser: 5,
		},
		testLogger(t),
	)

	return svc, users, refreshTokens, revokedTokens, hasher, mockClock
}
