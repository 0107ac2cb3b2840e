package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhttp "github.com/inkwell/blog-backend/internal/admin/http"
	adminservice "github.com/inkwell/blog-backend/internal/admin/service"
	authcleanup "github.com/inkwell/blog-backend/internal/auth/cleanup"
	authhttp "github.com/inkwell/blog-backend/internal/auth/http"
	authrepo "github.com/inkwell/blog-backend/internal/auth/repository"
	authservice "github.com/inkwell/blog-backend/internal/auth/service"
	bloghttp "github.com/inkwell/blog-backend/internal/blog/http"
	blogrepo "github.com/inkwell/blog-backend/internal/blog/repository"
	blogservice "github.com/inkwell/blog-backend/internal/blog/service"
	"github.com/inkwell/blog-backend/internal/common/clock"
	"github.com/inkwell/blog-backend/internal/common/config"
	"github.com/inkwell/blog-backend/internal/common/constants"
	"github.com/inkwell/blog-backend/internal/common/crypto"
	"github.com/inkwell/blog-backend/internal/common/db"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	"github.com/inkwell/blog-backend/internal/common/server"
	notifhttp "github.com/inkwell/blog-backend/internal/notification/http"
	notifrepo "github.com/inkwell/blog-backend/internal/notification/repository"
	notifservice "github.com/inkwell/blog-backend/internal/notification/service"
	profilehttp "github.com/inkwell/blog-backend/internal/profile/http"
	profileservice "github.com/inkwell/blog-backend/internal/profile/service"
	"github.com/inkwell/blog-backend/internal/observability/metrics"
	userrepo "github.com/inkwell/blog-backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap, _ := logger.New("", "api", "INFO")
		bootstrap.Fatalf("configuration error: %v", err)
	}

	log, err := logger.New(cfg.LogDir, "api", cfg.LogLevel)
	if err != nil {
		os.Exit(1)
	}

	if err := db.Migrate(log, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	realClock := clock.NewRealClock()
	idGenerator := crypto.NewUUIDGenerator()
	hasher := &crypto.BcryptHasher{}

	users := userrepo.NewPgRepository(pool)
	refreshTokens := authrepo.NewPgRefreshTokenRepository(pool)
	revokedTokens := authrepo.NewPgRevokedTokenRepository(pool)
	posts := blogrepo.NewPgPostRepository(pool)
	comments := blogrepo.NewPgCommentRepository(pool)
	categories := blogrepo.NewPgCategoryRepository(pool)
	tags := blogrepo.NewPgTagRepository(pool)
	notifications := notifrepo.NewPgRepository(pool)

	auth := authservice.NewAuthService(
		users,
		refreshTokens,
		revokedTokens,
		hasher,
		idGenerator,
		realClock,
		authservice.Config{
			JWTSecret:               []byte(cfg.JWTSecret),
			AccessTokenTTL:          cfg.AccessTokenTTL,
			RefreshTokenTTL:         cfg.RefreshTokenTTL,
			MaxRefreshTokensPerUser: cfg.MaxRefreshTokensPerUser,
			AdminMasterKey:          cfg.AdminMasterKey,
		},
		log,
	)
	adminService := adminservice.NewAdminService(users, refreshTokens, log)

	notificationService := notifservice.NewNotificationService(notifications, idGenerator, realClock, log)
	postService := blogservice.NewPostService(posts, categories, tags, idGenerator, realClock, log)
	commentService := blogservice.NewCommentService(comments, posts, notificationService, idGenerator, realClock, log)
	taxonomyService := blogservice.NewTaxonomyService(categories, tags, idGenerator, log)
	profileService := profileservice.NewProfileService(users)

	requireAuth := jwtverify.Middleware(auth, log)
	optionalAuth := jwtverify.OptionalMiddleware(auth, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	authhttp.NewHandler(auth, log, true).Register(mux, requireAuth)
	adminhttp.NewHandler(auth, adminService, log).Register(mux, requireAuth)
	bloghttp.NewHandler(postService, commentService, taxonomyService, log).Register(mux, optionalAuth)
	notifhttp.NewHandler(notificationService, log).Register(mux, requireAuth)
	profilehttp.NewHandler(profileService, log).Register(mux)

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go authcleanup.Run(cleanupCtx, authcleanup.Job{
		Name:     "refresh_tokens",
		Interval: constants.TokenCleanupInterval,
		Delete:   refreshTokens.DeleteExpired,
		Observe: func(deleted int64) {
			metrics.TokensCleanupDeleted.WithLabelValues("refresh").Add(float64(deleted))
		},
	}, log)
	go authcleanup.Run(cleanupCtx, authcleanup.Job{
		Name:     "revoked_tokens",
		Interval: constants.TokenCleanupInterval,
		Delete:   revokedTokens.DeleteExpired,
		Observe: func(deleted int64) {
			metrics.TokensCleanupDeleted.WithLabelValues("revoked").Add(float64(deleted))
		},
	}, log)
	go authcleanup.Run(cleanupCtx, authcleanup.Job{
		Name:     "notifications",
		Interval: constants.NotificationCleanupInterval,
		Delete:   notificationService.DeleteOld,
		Observe: func(deleted int64) {
			metrics.NotificationsCleanupDeleted.Add(float64(deleted))
		},
	}, log)

	rateLimiter := commonhttp.NewStrictRateLimiter()
	handler := commonhttp.BuildBaseHandler(log, rateLimiter.Middleware(mux))

	srv := server.NewServer(server.DefaultServerConfig(cfg.HTTPPort), handler)
	server.StartWithGracefulShutdownAndHooks(srv, log, "api", []server.ShutdownHook{
		func(ctx context.Context) error {
			cancelCleanup()
			return nil
		},
	})
}
