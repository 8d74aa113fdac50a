package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/config"
	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/auth"
	"github.com/gogo-imperial/gogo-web/internal/infra/captcha"
	"github.com/gogo-imperial/gogo-web/internal/infra/database"
	"github.com/gogo-imperial/gogo-web/internal/infra/database/memory"
	"github.com/gogo-imperial/gogo-web/internal/infra/http/handlers"
	"github.com/gogo-imperial/gogo-web/internal/infra/mail"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
	"github.com/gogo-imperial/gogo-web/internal/infra/worker"
	"github.com/gogo-imperial/gogo-web/internal/logging"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

const version = "1.0.0"

type repositories struct {
	leads    entity.LeadRepositoryInterface
	sessions entity.SessionRepositoryInterface
	audit    entity.AuditRepositoryInterface
	pages    entity.PageRepositoryInterface
}

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]handlers.Pinger{"database": nil, "redis": nil}

	// 1. Repositories
	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		health["database"] = db
	}

	// 2. Rate limiting
	var (
		store   ratelimit.WindowStore
		sweeper worker.Sweeper
	)
	if cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		redisStore := ratelimit.NewRedisStore(client, "")
		store = redisStore
		health["redis"] = redisStore
		logger.Info("rate limiting backed by redis")
	} else {
		memStore := ratelimit.NewMemoryStore()
		store, sweeper = memStore, memStore
		logger.Warn("REDIS_URL not set, rate limiting is per instance")
	}
	limiter := ratelimit.New(store, ratelimit.Config{
		Limit:       cfg.RateLimit.Limit,
		Window:      cfg.RateLimit.Window,
		BanAfter:    cfg.RateLimit.BanAfter,
		BanDuration: cfg.RateLimit.BanDuration,
	}, logger)

	// 3. Adapters
	notifier := mail.NewLeadNotifier(newMailTransport(cfg, logger), mail.NotifierOptions{
		From:           cfg.Mail.From,
		SalesEmail:     cfg.Mail.SalesEmail,
		BackoffBase:    cfg.Mail.BackoffBase,
		AttemptTimeout: cfg.Mail.AttemptTimeout,
	}, logger)

	verifier, err := newTokenVerifier(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// 4. Use cases
	audit := usecase.NewAuditLogger(repos.audit, logger)
	submitLead := usecase.NewSubmitLeadUseCase(limiter, newCaptchaVerifier(cfg, logger), repos.leads, notifier, cfg.Mail.MaxAttempts, logger)
	adminAuth := usecase.NewAdminAuthUseCase(repos.sessions, verifier, audit, cfg.Admin.Emails, cfg.Admin.SessionTTL, logger)
	pages := usecase.NewPageUseCase(repos.pages, audit, logger)

	// 5. Maintenance
	maintenance := worker.NewMaintenanceWorker(repos.sessions, sweeper, cfg.Maintenance.Schedule, logger)
	if err := maintenance.Start(ctx); err != nil {
		return err
	}

	// 6. Router
	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		Leads:          handlers.NewLeadHandler(submitLead, cfg.Server.LeadTimeout, logger),
		Content:        handlers.NewContentHandler(usecase.NewContentUseCase(repos.pages), logger),
		Health:         handlers.NewHealthHandler(version, health),
		AdminAuth:      handlers.NewAdminAuthHandler(adminAuth, cfg.Admin.CookieSecure, logger),
		Admin:          handlers.NewAdminHandler(usecase.NewListLeadsUseCase(repos.leads), audit, logger),
		Pages:          handlers.NewPageHandler(pages, logger),
		Sessions:       adminAuth,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	maintenance.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories, *sqlx.DB, error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		return repositories{
			leads:    memory.NewLeadRepository(),
			sessions: memory.NewSessionRepository(),
			audit:    memory.NewAuditRepository(),
			pages:    memory.NewPageRepository(),
		}, nil, nil
	}

	db, err := database.NewDBConnection(ctx, cfg.Database.URL, database.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return repositories{}, nil, err
	}
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return repositories{}, nil, err
		}
		logger.Info("database schema applied")
	}
	return repositories{
		leads:    database.NewLeadRepository(db),
		sessions: database.NewSessionRepository(db),
		audit:    database.NewAuditRepository(db),
		pages:    database.NewPageRepository(db),
	}, db, nil
}

func newMailTransport(cfg config.Config, logger *zap.Logger) mail.Transport {
	if cfg.MailMockMode() {
		logger.Warn("MAIL_HOST not set, lead notifications are only logged")
		return mail.NewLogTransport(logger)
	}
	return mail.NewSMTPTransport(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass)
}

func newCaptchaVerifier(cfg config.Config, logger *zap.Logger) usecase.CaptchaVerifier {
	if cfg.Captcha.SecretKey != "" {
		return captcha.NewClient(captcha.Options{
			Secret:    cfg.Captcha.SecretKey,
			VerifyURL: cfg.Captcha.VerifyURL,
			MinScore:  cfg.Captcha.MinScore,
			Timeout:   cfg.Captcha.Timeout,
			FailOpen:  cfg.Captcha.FailOpenOnError,
		}, logger)
	}
	if cfg.Captcha.BypassWhenUnconfigured {
		logger.Warn("RECAPTCHA_SECRET_KEY not set, captcha tokens are accepted unchecked")
		return captcha.Bypass{}
	}
	logger.Warn("RECAPTCHA_SECRET_KEY not set, submissions carrying a captcha token are rejected")
	return captcha.Reject{}
}

// newTokenVerifier prefers a JWKS key set (Cognito or explicit URL) and falls
// back to the shared HS256 secret. A nil verifier disables admin login.
func newTokenVerifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (usecase.TokenVerifier, error) {
	switch {
	case cfg.AdminUsesJWKS():
		jwksURL, issuer := cfg.Admin.JWKSURL, cfg.Admin.JWTIssuer
		if jwksURL == "" {
			jwksURL = auth.CognitoJWKSURL(cfg.Admin.CognitoRegion, cfg.Admin.CognitoUserPoolID)
			if issuer == "" {
				issuer = auth.CognitoIssuer(cfg.Admin.CognitoRegion, cfg.Admin.CognitoUserPoolID)
			}
		}
		v, err := auth.NewJWKSVerifier(ctx, jwksURL, issuer, cfg.Admin.JWTAudience)
		if err != nil {
			return nil, fmt.Errorf("admin jwks: %w", err)
		}
		logger.Info("admin login verifies RS256 tokens", zap.String("jwks_url", jwksURL))
		return v, nil
	case cfg.Admin.JWTSecret != "":
		logger.Info("admin login verifies HS256 tokens with the shared secret")
		return auth.NewJWTVerifier(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.JWTAudience), nil
	default:
		logger.Warn("no admin key set or JWT secret configured, admin login disabled")
		return nil, nil
	}
}
