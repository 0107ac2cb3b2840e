package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	authdomain "github.com/inkwell/blog-backend/internal/auth/domain"
	authhttp "github.com/inkwell/blog-backend/internal/auth/http"
	authservice "github.com/inkwell/blog-backend/internal/auth/service"
	"github.com/inkwell/blog-backend/internal/blog/domain"
	bloghttp "github.com/inkwell/blog-backend/internal/blog/http"
	blogrepo "github.com/inkwell/blog-backend/internal/blog/repository"
	blogservice "github.com/inkwell/blog-backend/internal/blog/service"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

// memoryUserRepo is a map-backed user store for flow tests.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]userdomain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]userdomain.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, user userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return commonerrors.ErrUsernameAlreadyExists
		}
		if existing.Email == user.Email {
			return commonerrors.ErrEmailAlreadyExists
		}
	}
	r.users[string(user.ID)] = user
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[string(id)]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) FindByIdentifier(ctx context.Context, identifier string) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (r *memoryUserRepo) List(ctx context.Context, limit, offset int) ([]userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]userdomain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id userdomain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[string(id)]; !ok {
		return userrepo.ErrUserNotFound
	}
	delete(r.users, string(id))
	return nil
}

type noopRefreshTokenRepo struct{}

func (noopRefreshTokenRepo) Create(ctx context.Context, token authdomain.RefreshToken) error {
	return nil
}

func (noopRefreshTokenRepo) Consume(ctx context.Context, hash string) (authdomain.RefreshToken, error) {
	return authdomain.RefreshToken{}, fmt.Errorf("not implemented")
}

func (noopRefreshTokenRepo) DeleteByTokenHash(ctx context.Context, hash string) error { return nil }
func (noopRefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) error  { return nil }
func (noopRefreshTokenRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	return 0, nil
}
func (noopRefreshTokenRepo) DeleteOldestByUserID(ctx context.Context, userID string) error {
	return nil
}
func (noopRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type noopRevokedTokenRepo struct{}

func (noopRevokedTokenRepo) Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
	return nil
}
func (noopRevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, nil
}
func (noopRevokedTokenRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// memoryPostRepo backs the flow test with a map.
func memoryPostRepo() *mockPostRepo {
	var mu sync.Mutex
	posts := map[string]domain.Post{}

	repo := &mockPostRepo{}
	repo.createFunc = func(ctx context.Context, post domain.Post, tagIDs []string) error {
		mu.Lock()
		defer mu.Unlock()
		posts[post.ID] = post
		return nil
	}
	repo.findByIDFunc = func(ctx context.Context, id string) (domain.Post, error) {
		mu.Lock()
		defer mu.Unlock()
		post, ok := posts[id]
		if !ok {
			return domain.Post{}, blogrepo.ErrPostNotFound
		}
		return post, nil
	}
	repo.updateFunc = func(ctx context.Context, post domain.Post, tagIDs []string) error {
		mu.Lock()
		defer mu.Unlock()
		posts[post.ID] = post
		return nil
	}
	repo.deleteFunc = func(ctx context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		delete(posts, id)
		return nil
	}
	return repo
}

func setupFlowMux(t *testing.T) *http.ServeMux {
	t.Helper()
	log := testLogger(t)

	auth := authservice.NewAuthService(
		newMemoryUserRepo(),
		noopRefreshTokenRepo{},
		noopRevokedTokenRepo{},
		fakeHasher{},
		&mockIDGenerator{},
		testClock(),
		authservice.Config{
			JWTSecret:      []byte("0123456789abcdef0123456789abcdef"),
			AccessTokenTTL: time.Hour,
		},
		log,
	)

	posts := memoryPostRepo()
	categories := &mockCategoryRepo{}
	tags := &mockTagRepo{}
	postService := blogservice.NewPostService(posts, categories, tags, &mockIDGenerator{counter: 1000}, testClock(), log)
	commentService := blogservice.NewCommentService(&mockCommentRepo{}, posts, &mockNotifier{}, &mockIDGenerator{counter: 2000}, testClock(), log)
	taxonomyService := blogservice.NewTaxonomyService(categories, tags, &mockIDGenerator{counter: 3000}, log)

	mux := http.NewServeMux()
	authhttp.NewHandler(auth, log, false).Register(mux, jwtverify.Middleware(auth, log))
	bloghttp.NewHandler(postService, commentService, taxonomyService, log).Register(mux, jwtverify.OptionalMiddleware(auth, log))
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, mux *http.ServeMux, username string) string {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"password123"}`, username, username)
	if rec := doJSON(t, mux, http.MethodPost, "/api/auth/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}

	loginBody := fmt.Sprintf(`{"identifier":%q,"password":"password123"}`, username)
	rec := doJSON(t, mux, http.MethodPost, "/api/auth/login", "", loginBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestFlow_OwnershipEnforcedEndToEnd(t *testing.T) {
	mux := setupFlowMux(t)

	aliceToken := registerAndLogin(t, mux, "alice")
	bobToken := registerAndLogin(t, mux, "bob")

	// Alice publishes a post.
	rec := doJSON(t, mux, http.MethodPost, "/api/posts", aliceToken,
		`{"title":"Hello","content":"first","is_published":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// Anonymous readers see the published post.
	rec = doJSON(t, mux, http.MethodGet, "/api/posts/"+created.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous read: expected 200, got %d", rec.Code)
	}

	// Bob cannot update Alice's post.
	rec = doJSON(t, mux, http.MethodPut, "/api/posts/"+created.ID, bobToken,
		`{"title":"Hijacked","content":"mine now","is_published":true}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "FORBIDDEN") {
		t.Errorf("expected FORBIDDEN envelope, got %s", rec.Body.String())
	}

	// Alice updates her own post.
	rec = doJSON(t, mux, http.MethodPut, "/api/posts/"+created.ID, aliceToken,
		`{"title":"Hello v2","content":"edited","is_published":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("own update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Hello v2") {
		t.Errorf("expected updated title in response, got %s", rec.Body.String())
	}

	// Unauthenticated mutation is rejected.
	rec = doJSON(t, mux, http.MethodDelete, "/api/posts/"+created.ID, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous delete: expected 401, got %d", rec.Code)
	}

	// Bob comments on Alice's post.
	rec = doJSON(t, mux, http.MethodPost, "/api/posts/"+created.ID+"/comments", bobToken,
		`{"content":"nice post"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}
