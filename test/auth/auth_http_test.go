package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authhttp "github.com/inkwell/blog-backend/internal/auth/http"
	"github.com/inkwell/blog-backend/internal/auth/service"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

func setupAuthMux(t *testing.T) (*http.ServeMux, *service.AuthService, *mockUserRepo, *mockRefreshTokenRepo) {
	t.Helper()

	svc, users, refreshTokens, _, _, _ := setupAuthService(t)
	log := testLogger(t)

	mux := http.NewServeMux()
	handler := authhttp.NewHandler(svc, log, false)
	handler.Register(mux, jwtverify.Middleware(svc, log))

	return mux, svc, users, refreshTokens
}

func TestRegisterEndpoint_Created(t *testing.T) {
	mux, _, users, _ := setupAuthMux(t)

	users.createFunc = func(ctx context.Context, user userdomain.User) error {
		return nil
	}

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID == "" || resp.Username != "alice" || resp.Email != "alice@example.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks the password")
	}
}

func TestRegisterEndpoint_ValidationFailure(t *testing.T) {
	mux, _, _, _ := setupAuthMux(t)

	body := `{"username":"ab","email":"nope","password":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATION_FAILED") {
		t.Errorf("expected VALIDATION_FAILED envelope, got %s", rec.Body.String())
	}
}

func TestLoginEndpoint_SetsRefreshCookie(t *testing.T) {
	mux, _, users, _ := setupAuthMux(t)
	withAlice(users)

	body := `{"identifier":"alice","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Errorf("unexpected token response: %+v", resp)
	}

	var refreshCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("expected refresh_token cookie")
	}
	if !refreshCookie.HttpOnly {
		t.Error("refresh cookie must be httpOnly")
	}
	if refreshCookie.Path != "/api/auth" {
		t.Errorf("expected cookie scoped to /api/auth, got %s", refreshCookie.Path)
	}
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	mux, _, users, _ := setupAuthMux(t)
	withAlice(users)

	body := `{"identifier":"alice","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_CREDENTIALS") {
		t.Errorf("expected INVALID_CREDENTIALS envelope, got %s", rec.Body.String())
	}
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	mux, _, _, _ := setupAuthMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MISSING_REFRESH_TOKEN") {
		t.Errorf("expected MISSING_REFRESH_TOKEN envelope, got %s", rec.Body.String())
	}
}

func TestLogoutEndpoint_RequiresToken(t *testing.T) {
	mux, _, _, _ := setupAuthMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MISSING_AUTHORIZATION") {
		t.Errorf("expected MISSING_AUTHORIZATION envelope, got %s", rec.Body.String())
	}
}

func TestLogoutEndpoint_WithValidToken(t *testing.T) {
	mux, svc, users, refreshTokens := setupAuthMux(t)
	withAlice(users)

	token := loginAndGetToken(t, svc)

	deleted := false
	refreshTokens.deleteByTokenHashFunc = func(ctx context.Context, hash string) error {
		deleted = true
		return nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "some-refresh-token"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if !deleted {
		t.Error("expected refresh token deletion")
	}
}

func TestBearerMiddleware_GarbledTokenRejected(t *testing.T) {
	mux, _, _, _ := setupAuthMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_TOKEN") {
		t.Errorf("expected INVALID_TOKEN envelope, got %s", rec.Body.String())
	}
}
