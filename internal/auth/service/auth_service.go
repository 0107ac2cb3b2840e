package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	authdomain "github.com/inkwell/blog-backend/internal/auth/domain"
	authrepo "github.com/inkwell/blog-backend/internal/auth/repository"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

type Config struct {
	JWTSecret               []byte
	AccessTokenTTL          time.Duration
	RefreshTokenTTL         time.Duration
	MaxRefreshTokensPerUser int
	// AdminMasterKey gates admin self-registration. Empty disables it.
	AdminMasterKey string
}

type AuthService struct {
	users         userrepo.Repository
	refreshTokens authrepo.RefreshTokenRepository
	revokedTokens authrepo.RevokedTokenRepository
	hasher        crypto.PasswordHasher
	idGenerator   crypto.IDGenerator
	clock         clock.Clock
	cfg           Config
	log           *logger.Logger
}

func NewAuthService(
	users userrepo.Repository,
	refreshTokens authrepo.RefreshTokenRepository,
	revokedTokens authrepo.RevokedTokenRepository,
	hasher crypto.PasswordHasher,
	idGenerator crypto.IDGenerator,
	clk clock.Clock,
	cfg Config,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		revokedTokens: revokedTokens,
		hasher:        hasher,
		idGenerator:   idGenerator,
		clock:         clk,
		cfg:           cfg,
		log:           log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Identifier string
	Password   string
}

// TokenPair is what a successful login or refresh hands back: a short-lived
// signed access token plus an opaque single-use refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	return s.createUser(ctx, input, userdomain.RoleUser)
}

// RegisterAdmin creates an admin account when the presented master key matches
// the configured one. With no key configured the endpoint is dead.
func (s *AuthService) RegisterAdmin(ctx context.Context, input RegisterInput, masterKey string) (userdomain.User, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "register_admin"})

	if s.cfg.AdminMasterKey == "" {
		entry.Warn("admin registration attempted but no master key is configured")
		return userdomain.User{}, ErrAdminRegistrationDisabled
	}
	if subtle.ConstantTimeCompare([]byte(masterKey), []byte(s.cfg.AdminMasterKey)) != 1 {
		entry.Warn("admin registration rejected: bad master key")
		return userdomain.User{}, ErrInvalidMasterKey
	}

	return s.createUser(ctx, input, userdomain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role userdomain.Role) (userdomain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	entry := s.log.WithFields(ctx, logger.Fields{"action": "register", "username": username})

	if err := validateCredentials(username, email, input.Password); err != nil {
		entry.Warnf("registration rejected: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		entry.Errorf("password hashing failed: %v", err)
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if commonerrors.IsDomainError(err) {
			entry.Warnf("registration conflict: %v", err)
			return userdomain.User{}, err
		}
		entry.Errorf("user insert failed: %v", err)
		return userdomain.User{}, err
	}

	incrementUsersRegistered()
	entry.Infof("user registered id=%s", user.ID)
	return user, nil
}

// Login accepts a username or an email as the identifier. The unknown-user
// path still runs one bcrypt comparison so both failures take similar time,
// and both return the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (userdomain.User, TokenPair, error) {
	identifier := strings.TrimSpace(input.Identifier)
	// Emails are stored lowercased at registration; fold the email form of
	// the identifier the same way so case never locks a user out.
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	entry := s.log.WithFields(ctx, logger.Fields{"action": "login"})

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			_ = s.hasher.Compare(crypto.DummyCompareHash, input.Password)
			incrementLoginAttempts("failure")
			entry.Warn("login failed: unknown identifier")
			return userdomain.User{}, TokenPair{}, ErrInvalidCredentials
		}
		entry.Errorf("login lookup failed: %v", err)
		return userdomain.User{}, TokenPair{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		incrementLoginAttempts("failure")
		entry.Warnf("login failed: wrong password user_id=%s", user.ID)
		return userdomain.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return userdomain.User{}, TokenPair{}, err
	}

	incrementLoginAttempts("success")
	entry.Infof("login succeeded user_id=%s", user.ID)
	return user, pair, nil
}

// Refresh rotates the presented refresh token: it is consumed atomically and
// a brand new pair is issued. A replayed or expired token yields 401.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (userdomain.User, TokenPair, error) {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "refresh"})

	stored, err := s.refreshTokens.Consume(ctx, crypto.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			entry.Warn("refresh failed: token not found")
			return userdomain.User{}, TokenPair{}, ErrInvalidRefreshToken
		}
		entry.Errorf("refresh lookup failed: %v", err)
		return userdomain.User{}, TokenPair{}, err
	}

	if s.clock.Now().After(stored.ExpiresAt) {
		incrementRefreshTokensExpired()
		entry.Warnf("refresh failed: token expired user_id=%s", stored.UserID)
		return userdomain.User{}, TokenPair{}, ErrRefreshTokenExpired
	}

	user, err := s.users.FindByID(ctx, userdomain.ID(stored.UserID))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			entry.Warnf("refresh failed: user gone user_id=%s", stored.UserID)
			return userdomain.User{}, TokenPair{}, ErrInvalidRefreshToken
		}
		return userdomain.User{}, TokenPair{}, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return userdomain.User{}, TokenPair{}, err
	}

	incrementRefreshTokensUsed()
	entry.Infof("tokens refreshed user_id=%s", user.ID)
	return user, pair, nil
}

// Logout discards the refresh token and denylists the access token's jti for
// the remainder of its lifetime, so the pair dies immediately.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, claims jwtverify.Claims) error {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "logout", "user_id": claims.UserID})

	if refreshToken != "" {
		if err := s.refreshTokens.DeleteByTokenHash(ctx, crypto.HashToken(refreshToken)); err != nil {
			entry.Errorf("refresh token delete failed: %v", err)
			return err
		}
		incrementRefreshTokensRevoked()
	}

	if err := s.revokedTokens.Revoke(ctx, claims.JTI, claims.UserID, claims.ExpiresAt); err != nil {
		entry.Errorf("access token revoke failed: %v", err)
		return err
	}
	incrementAccessTokensRevoked()

	entry.Info("logout complete")
	return nil
}

// DeleteAccount revokes every live session for the user, then removes the
// user row; authored content goes with it via ON DELETE CASCADE. The current
// access token is denylisted so it cannot outlive the account.
func (s *AuthService) DeleteAccount(ctx context.Context, claims jwtverify.Claims) error {
	entry := s.log.WithFields(ctx, logger.Fields{"action": "delete_account", "user_id": claims.UserID})

	if err := s.revokedTokens.Revoke(ctx, claims.JTI, claims.UserID, claims.ExpiresAt); err != nil {
		entry.Errorf("access token revoke failed: %v", err)
		return err
	}
	incrementAccessTokensRevoked()

	if err := s.refreshTokens.DeleteByUserID(ctx, claims.UserID); err != nil {
		entry.Errorf("refresh token purge failed: %v", err)
		return err
	}

	if err := s.users.Delete(ctx, userdomain.ID(claims.UserID)); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return commonerrors.ErrUserNotFound
		}
		entry.Errorf("user delete failed: %v", err)
		return err
	}

	entry.Info("account deleted")
	return nil
}

// ValidateAccessToken checks signature, expiry and the revocation denylist.
// Expired and forged tokens are distinguished here for logs and metrics but
// both surface to callers as the same invalid-token error.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenString string) (jwtverify.Claims, error) {
	incrementJWTValidations()

	claims, err := jwtverify.ParseTokenAt(tokenString, s.cfg.JWTSecret, s.clock.Now)
	if err != nil {
		if errors.Is(err, jwtverify.ErrTokenExpired) {
			incrementJWTExpired()
			s.log.WithFields(ctx, logger.Fields{"action": "validate_token"}).Debug("token expired")
		} else {
			incrementJWTInvalid()
			s.log.WithFields(ctx, logger.Fields{"action": "validate_token"}).Warn("token rejected: bad signature or malformed")
		}
		return jwtverify.Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}

	incrementJWTRevokedChecks()
	revoked, err := s.revokedTokens.IsRevoked(ctx, claims.JTI)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{"action": "validate_token"}).Errorf("revocation check failed: %v", err)
		return jwtverify.Claims{}, err
	}
	if revoked {
		incrementJWTInvalid()
		s.log.WithFields(ctx, logger.Fields{"action": "validate_token", "user_id": claims.UserID}).Info("token rejected: revoked")
		return jwtverify.Claims{}, commonerrors.ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user userdomain.User) (TokenPair, error) {
	now := s.clock.Now().UTC()

	jti, err := s.idGenerator.NewID()
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}

	accessToken, accessExpiresAt, err := jwtverify.IssueAccessToken(
		s.cfg.JWTSecret,
		string(user.ID),
		user.Username,
		string(user.Role),
		jti,
		now,
		s.cfg.AccessTokenTTL,
	)
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}

	rawRefresh, err := crypto.GenerateOpaqueToken()
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}

	refreshID, err := s.idGenerator.NewID()
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}

	refreshExpiresAt := now.Add(s.cfg.RefreshTokenTTL)
	record := authdomain.RefreshToken{
		ID:        refreshID,
		TokenHash: crypto.HashToken(rawRefresh),
		UserID:    string(user.ID),
		ExpiresAt: refreshExpiresAt,
		CreatedAt: now,
	}

	if err := s.enforceRefreshTokenLimit(ctx, string(user.ID)); err != nil {
		return TokenPair{}, err
	}

	if err := s.refreshTokens.Create(ctx, record); err != nil {
		return TokenPair{}, err
	}

	incrementAccessTokensIssued()
	incrementRefreshTokensIssued()

	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// enforceRefreshTokenLimit caps live sessions per user by dropping the oldest
// token once the cap is reached.
func (s *AuthService) enforceRefreshTokenLimit(ctx context.Context, userID string) error {
	if s.cfg.MaxRefreshTokensPerUser <= 0 {
		return nil
	}

	count, err := s.refreshTokens.CountByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for count >= s.cfg.MaxRefreshTokensPerUser {
		if err := s.refreshTokens.DeleteOldestByUserID(ctx, userID); err != nil {
			return err
		}
		count--
	}
	return nil
}
