// Package main runs the ShareShine HTTP API with graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shareshine/backend/config"
	"github.com/shareshine/backend/internal/auth"
	"github.com/shareshine/backend/internal/registrations"
	"github.com/shareshine/backend/internal/resources"
	"github.com/shareshine/backend/internal/store"
	"github.com/shareshine/backend/internal/uploads"
	"github.com/shareshine/backend/pkg/database"
	"github.com/shareshine/backend/pkg/redis"
	"github.com/shareshine/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Production())
	defer logger.Sync()
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer st.Close()

	persistence, closePersistence, err := openPersistence(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("registrations persistence", zap.Error(err), zap.String("backend", cfg.Registrations.Backend))
	}
	defer closePersistence()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	credentials := auth.StaticCredentials{}
	if cfg.Admin.PasswordHash != "" || cfg.Admin.Password != "" {
		credentials, err = auth.NewStaticCredentials(cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.Admin.Password)
		if err != nil {
			logger.Fatal("admin credentials", zap.Error(err))
		}
	} else if cfg.Admin.RequireAuth {
		logger.Fatal("REQUIRE_ADMIN_AUTH is set but neither ADMIN_PASSWORD_HASH nor ADMIN_PASSWORD is")
	} else {
		logger.Warn("no admin credentials configured; admin login disabled")
	}

	var uploader uploads.Uploader
	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		Bucket:               cfg.AWS.UploadsBucket,
		PublicBaseURL:        cfg.AWS.PublicBaseURL,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	if s3Cfg.Configured() {
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			uploader = s3Client
		}
	} else {
		logger.Info("AWS_S3_UPLOADS_BUCKET not set; uploads disabled")
	}

	router := newRouter(routerDeps{
		logger:        logger,
		production:    cfg.Production(),
		corsOrigins:   cfg.Server.CORSAllowedOrigins,
		maxBodyBytes:  cfg.Server.MaxBodyBytes(),
		requireAdmin:  cfg.Admin.RequireAuth,
		store:         st,
		registrations: registrations.NewStore(persistence, registrations.WithEvents(st, resources.Events.Table)),
		authenticator: auth.NewPasswordAuthenticator(credentials, jwtService),
		tokens:        jwtService,
		uploader:      uploader,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Driver),
			zap.String("registrations", cfg.Registrations.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openStore builds the resource store for the configured driver.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	tables := resources.Tables(resources.All...)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return store.NewMemory(tables...), nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return store.OpenSQLite(ctx, cfg.Store.SQLitePath, tables...)
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgres(pool, tables...), nil
	}
}

// openPersistence builds the registration persistence for the configured
// backend. The returned func releases it.
func openPersistence(ctx context.Context, cfg *config.Config, logger *zap.Logger) (registrations.Persistence, func(), error) {
	switch cfg.Registrations.Backend {
	case config.BackendMemory:
		logger.Warn("registrations kept in memory; data is lost on restart")
		return registrations.NewMemoryPersistence(), func() {}, nil
	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		return registrations.NewRedisPersistence(rdb, cfg.Registrations.Key), func() { _ = rdb.Close() }, nil
	default:
		return registrations.NewFilePersistence(cfg.Registrations.File), func() {}, nil
	}
}

func newLogger(production bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if !production {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
