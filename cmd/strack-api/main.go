package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/strack-api/api/swagger"
	"github.com/noah-isme/strack-api/internal/handler"
	internalmiddleware "github.com/noah-isme/strack-api/internal/middleware"
	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/repository"
	"github.com/noah-isme/strack-api/internal/service"
	"github.com/noah-isme/strack-api/pkg/cache"
	"github.com/noah-isme/strack-api/pkg/config"
	"github.com/noah-isme/strack-api/pkg/database"
	"github.com/noah-isme/strack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/strack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/strack-api/pkg/middleware/requestid"
)

// @title sTrack Roster API
// @version 1.0.0
// @description Student roster views, exports and permission-gated edits
// @BasePath /
// @schemes http

type studentStore interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]handler.ReadinessCheck{}

	students, db, err := openStudentStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open student store", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
		checks["database"] = db.PingContext
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, roster cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	adminHash := cfg.Admin.PasswordHash
	if adminHash == "" && cfg.Admin.Password != "" {
		if adminHash, err = service.HashAdminPassword(cfg.Admin.Password); err != nil {
			logr.Fatal("failed to hash admin password", zap.Error(err))
		}
	}
	if adminHash == "" {
		logr.Warn("no admin password configured, admin mode disabled")
	}

	validate := service.NewValidator()
	authSvc := service.NewAuthService(repository.NewIdentityRepository(), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminPasswordHash: adminHash,
	})
	studentSvc := service.NewStudentService(students, cacheSvc, metrics, validate, logr)
	rosterSvc := service.NewRosterService(students, cacheSvc, metrics, service.RosterConfig{
		PageSize: cfg.Roster.PageSize,
		CacheTTL: cfg.Cache.TTL,
	}, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Students: handler.NewStudentHandler(studentSvc),
		Roster:   handler.NewRosterHandler(rosterSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStudentStore builds the configured backend and seeds it when empty. The
// returned handle is nil for the memory driver.
func openStudentStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (studentStore, *sqlx.DB, error) {
	seed := repository.SeedStudents(cfg.Storage.SeedStudents, cfg.Storage.SeedValue, time.Now())

	if cfg.Storage.Driver == config.StorageMemory {
		logr.Info("using in-memory roster", zap.Int("seeded", len(seed)))
		return repository.NewMemoryStudentRepository(seed), nil, nil
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err = database.NewPostgres(ctx, cfg.Database)
	case config.StorageSQLite:
		db, err = database.NewSQLite(ctx, cfg.Storage.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", cfg.Storage.Driver, err)
	}

	repo := repository.NewStudentRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	seeded, err := repository.SeedIfEmpty(ctx, repo, seed)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logr.Info("using sql roster", zap.String("driver", db.DriverName()), zap.Int("seeded", seeded))
	return repo, db, nil
}
