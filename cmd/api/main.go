// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Command api is the entry point for the StudentHub HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the credential store (PostgreSQL + migrations, or in-memory).
//  4. Connect to Redis.
//  5. Wire mail, object storage, rate limits and domain services.
//  6. Start the refresh-token janitor.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayneaws/studenthub/internal/api"
	"github.com/wayneaws/studenthub/internal/discord"
	"github.com/wayneaws/studenthub/internal/newsletter"
	"github.com/wayneaws/studenthub/internal/platform/config"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/imaging"
	"github.com/wayneaws/studenthub/internal/platform/mailer"
	"github.com/wayneaws/studenthub/internal/platform/middleware"
	"github.com/wayneaws/studenthub/internal/platform/migration"
	pgstore "github.com/wayneaws/studenthub/internal/platform/postgres"
	"github.com/wayneaws/studenthub/internal/platform/ratelimit"
	redisstore "github.com/wayneaws/studenthub/internal/platform/redis"
	"github.com/wayneaws/studenthub/internal/platform/sanitize"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/platform/storage"
	"github.com/wayneaws/studenthub/internal/users/account"
	"github.com/wayneaws/studenthub/internal/users/admin"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// janitorInterval is how often dead refresh tokens are purged.
const janitorInterval = time.Hour

// repositories is the set of stores selected by STORAGE_DRIVER.
type repositories struct {
	users      auth.UserRepository
	sessions   auth.SessionRepository
	accounts   account.Repository
	members    admin.Repository
	newsletter newsletter.Repository
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background workers (IP limiter cleanup, janitor) stop with this context.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. Credential store ───────────────────────────────────────────────
	var (
		pool  *pgxpool.Pool
		repos repositories
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err = pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		version, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
		must(log, err, "run migrations")
		log.Info("schema_ready", slog.Uint64("version", uint64(version)))

		repos = repositories{
			users:      auth.NewUserRepository(pool),
			sessions:   auth.NewSessionRepository(pool),
			accounts:   account.NewRepository(pool),
			members:    admin.NewRepository(pool),
			newsletter: newsletter.NewRepository(pool),
		}

	case config.StorageMemory:
		log.Warn("memory_storage_enabled", slog.String("reason", "data is lost on restart"))
		store := auth.NewMemoryStore()
		repos = repositories{
			users:      store,
			sessions:   store,
			accounts:   account.NewMemoryRepository(store),
			members:    admin.NewMemoryRepository(store),
			newsletter: newsletter.NewMemoryRepository(),
		}
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Platform services ──────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, time.Now)
	must(log, err, "initialize token service")

	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.SMTP.Enabled() {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		must(log, err, "initialize smtp mailer")
		mail = smtpMailer
	} else {
		log.Warn("smtp_disabled", slog.String("fallback", "reset codes are logged"))
	}

	objects := newObjectStore(startupCtx, cfg, log)

	limiter := ratelimit.New(rdb, log)
	clientIP := middleware.ClientIP(cfg.TrustProxy)
	limitBy := func(policy ratelimit.Policy) func(http.Handler) http.Handler {
		return limiter.Middleware(policy, clientIP)
	}

	// ── 6. Domain wiring ──────────────────────────────────────────────────
	authService := auth.NewService(repos.users, repos.sessions, tokens, sec.NewHasher(cfg.BcryptCost), mail, auth.Options{
		RefreshTTL:         cfg.RefreshTokenTTL,
		SessionCap:         cfg.RefreshTokenCap,
		ResetCodeTTL:       cfg.ResetCodeTTL,
		LoginLookupTimeout: cfg.LoginLookupTimeout,
	})

	var social *auth.SocialService
	if cfg.IdentityProvider.Enabled() {
		social = auth.NewSocialService(authService, auth.NewRedisStateStore(rdb), auth.SocialConfig{
			IssuerURL:    cfg.IdentityProvider.IssuerURL,
			ClientID:     cfg.IdentityProvider.ClientID,
			ClientSecret: cfg.IdentityProvider.ClientSecret,
			RedirectURL:  cfg.IdentityProvider.RedirectURL,
		})
		log.Info("social_login_enabled", slog.String("issuer", cfg.IdentityProvider.IssuerURL))
	}

	accountService := account.NewService(repos.accounts, objects, imaging.NewResizer(), sanitize.DefaultWordFilter(), time.Now)
	newsletterService := newsletter.NewService(repos.newsletter, time.Now)
	adminService := admin.NewService(repos.members, authService, newsletterService, time.Now)

	discordClient := discord.NewClient(discord.Config{
		BotToken:   cfg.DiscordBotToken,
		ChannelID:  cfg.DiscordChannelID,
		APIBaseURL: cfg.DiscordAPIBaseURL,
	})
	if cfg.NewsletterAdminToken == "" {
		log.Warn("newsletter_admin_token_missing", slog.String("effect", "subscriber list is disabled"))
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	checks := []api.HealthCheck{{
		Name:  "redis",
		Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}}
	if pool != nil {
		checks = append([]api.HealthCheck{{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		}}, checks...)
	}
	liveness, readiness := api.NewHealthHandlers(log, checks...)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth: auth.NewHandler(authService, social, auth.RouteLimits{
			Login:  limitBy(ratelimit.Login),
			Auth:   limitBy(ratelimit.Auth),
			Reset:  limitBy(ratelimit.Reset),
			Signup: limitBy(ratelimit.Signup),
		}),
		Account:    account.NewHandler(accountService),
		Admin:      admin.NewHandler(adminService),
		Newsletter: newsletter.NewHandler(newsletterService, cfg.NewsletterAdminToken, limitBy(ratelimit.Newsletter)),
		Discord:    discord.NewHandler(discordClient),
	}

	server := api.NewServer(appCtx, cfg, log, authService, handlers)

	go runJanitor(appCtx, log, authService)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	appCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newObjectStore returns S3 when a bucket is configured and an in-process
// store otherwise.
func newObjectStore(ctx context.Context, cfg *config.Config, log *slog.Logger) storage.ObjectStore {
	s3Config := storage.S3Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	}

	if !cfg.S3.Enabled() {
		log.Warn("object_storage_disabled", slog.String("fallback", "pictures are kept in memory"))
		return storage.NewMemoryStore("http://localhost:" + cfg.ServerPort + "/uploads")
	}

	store, err := storage.NewS3Store(ctx, s3Config)
	must(log, err, "initialize object storage")
	log.Info("object_storage_ready", slog.String("bucket", cfg.S3.Bucket))
	return store
}

// runJanitor purges expired refresh tokens until ctx is cancelled.
func runJanitor(ctx context.Context, log *slog.Logger, service *auth.Service) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := service.SweepExpired(ctx)
			if err != nil {
				log.Error("session_sweep_failed", slog.Any("error", err))
				continue
			}
			log.Info("session_sweep_completed", slog.Int64("removed", removed))
		case <-ctx.Done():
			return
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
