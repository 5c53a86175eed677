// @title           Videotube User Service API
// @version         1.0
// @description     Account registration, cookie and bearer sessions with rotating refresh tokens, and profile management.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/videotube/user-service/docs"
	"github.com/videotube/user-service/internal/api"
	"github.com/videotube/user-service/internal/api/handler"
	"github.com/videotube/user-service/internal/core/ports"
	"github.com/videotube/user-service/internal/core/service"
	"github.com/videotube/user-service/internal/infrastructure/config"
	"github.com/videotube/user-service/internal/infrastructure/db/memory"
	mongostore "github.com/videotube/user-service/internal/infrastructure/db/mongo"
	"github.com/videotube/user-service/internal/infrastructure/db/postgres"
	redisstore "github.com/videotube/user-service/internal/infrastructure/db/redis"
	infrahttp "github.com/videotube/user-service/internal/infrastructure/http"
	"github.com/videotube/user-service/internal/infrastructure/http/handlers"
	"github.com/videotube/user-service/internal/infrastructure/media"
	"github.com/videotube/user-service/internal/infrastructure/queue"
	"github.com/videotube/user-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	deps := []handlers.Dependency{{Name: cfg.Driver, Pinger: st.users}}

	var sessionOpts []service.SessionOption
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		locker := redisstore.NewRefreshLocker(rdb, cfg.Redis.LockTTL, logger.Component("refresh-lock"))
		sessionOpts = append(sessionOpts, service.WithRefreshLocker(locker))
		deps = append(deps, handlers.Dependency{Name: "redis", Pinger: locker})
	}

	uploader, err := media.NewS3Uploader(ctx, media.Config{
		Endpoint:      cfg.S3.Endpoint,
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
		UsePathStyle:  cfg.S3.UsePathStyle,
		MaxDimension:  cfg.Upload.MaxDimension,
	}, logger.Component("media"))
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, st.audit, logger.Component("audit"))
	dispatcher.Start()
	sessionOpts = append(sessionOpts, service.WithAuditSink(dispatcher))

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessExpiry,
		RefreshTTL:    cfg.Auth.RefreshExpiry,
		Issuer:        cfg.Auth.Issuer,
	})
	if err != nil {
		return err
	}
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)

	uploadDir := cfg.Upload.TempDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Sessions: service.NewSessionService(st.users, hasher, tokens, uploader, logger.Component("sessions"), sessionOpts...),
		Accounts: service.NewAccountService(st.users, uploader, dispatcher, logger.Component("accounts")),
		Tokens:   tokens,
		Users:    st.users,
		Cookies: handler.CookieOptions{
			Secure:     cfg.Cookie.Secure,
			Domain:     cfg.Cookie.Domain,
			AccessTTL:  cfg.Auth.AccessExpiry,
			RefreshTTL: cfg.Auth.RefreshExpiry,
		},
		UploadDir:      uploadDir,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		CORSOrigin:     cfg.CORSOrigin,
		Ops: infrahttp.OpsOptions{
			Dependencies: deps,
			Swagger:      !cfg.IsProduction(),
		},
		Log: logger.Component("http"),
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Driver).Msg("user service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit dispatcher did not drain before shutdown")
	}
	return nil
}

// store bundles the credential store chosen by STORE_DRIVER with its audit
// repository and teardown.
type store struct {
	users ports.UserRepository
	audit ports.AuditRepository
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, users, audit, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &store{users: users, audit: audit, close: func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}}, nil

	case config.DriverPostgres:
		pool, users, audit, err := postgres.Open(ctx, postgres.Config{DSN: cfg.PG.DSN})
		if err != nil {
			return nil, err
		}
		return &store{users: users, audit: audit, close: pool.Close}, nil

	default:
		log.Warn().Msg("using in-memory credential store, data is lost on restart")
		return &store{users: memory.NewUserRepository(), audit: memory.NewAuditRepository(), close: func() {}}, nil
	}
}
