// Package container provides dependency injection using Uber FX.
package container

import (
	"context"
	"fmt"

	costingapp "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/application/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/application/ingredient"
	recipeapp "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/application/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/ai/openai"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/config"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/http/server"
	gormRepo "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/gorm"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/memory"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/migrations"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/redis"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/sqlite"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/worker"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Module provides the core dependency graph shared by all binaries.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	ServiceModule,
)

// APIModule provides the HTTP server on top of the core graph.
var APIModule = fx.Options(
	Module,
	HTTPModule,
	fx.Invoke(RegisterAPILifecycle),
)

// WorkerModule provides the background poller on top of the core graph.
var WorkerModule = fx.Options(
	Module,
	fx.Provide(worker.NewPoller),
	fx.Invoke(RegisterWorkerLifecycle),
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the database connection. PostgreSQL runs the
// embedded migrations; SQLite auto-migrates and seeds the price table,
// which keeps local development free of external services.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		if cfg.Database.Driver == "postgres" {
			db, err := postgres.Connect(cfg, log)
			if err != nil {
				return nil, err
			}

			if cfg.Database.AutoMigrate {
				sqlDB, err := postgres.OpenSQL(cfg)
				if err != nil {
					return nil, fmt.Errorf("open migration connection: %w", err)
				}
				migrator, err := migrations.New(sqlDB, log)
				if err != nil {
					return nil, err
				}
				if err := migrator.Up(); err != nil {
					return nil, err
				}
				if err := migrator.Close(); err != nil {
					log.Warn("Failed to close migrator", zap.Error(err))
				}
			}

			return db, nil
		}

		dbPath := ":memory:"
		if cfg.Database.Database != "" {
			dbPath = cfg.Database.Database + ".db"
		}

		logLevel := gormLogger.Silent
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}

		db, err := sqlite.SetupDatabase(dbPath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}

		if err := sqlite.SeedDatabase(db); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}

		log.Info("Connected to SQLite database",
			zap.String("path", dbPath),
			zap.Bool("in_memory", dbPath == ":memory:"),
		)

		return db, nil
	},
)

// CacheModule provides the cache repository and the AI prompt cache.
// When Redis is unreachable the process falls back to the in-memory
// cache instead of refusing to start.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
		client, err := redisRepo.NewClient(cfg)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
			return memory.NewCacheRepository()
		}

		log.Info("Connected to Redis", zap.String("addr", cfg.GetRedisAddr()))
		return redisRepo.NewCacheRepository(client, log)
	},
	func(cfg *config.Config, store outbound.CacheRepository, log *zap.Logger) *cache.PromptCache {
		return cache.NewPromptCache(store, cfg.AI.CacheTTL, log)
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewTaskRepository,
	gormRepo.NewIngredientRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		openai.NewClient,
		fx.As(new(outbound.AIService)),
	),

	recipeapp.NewService,
	ingredient.NewService,

	costingapp.NewService,
	func(s *costingapp.Service) inbound.CostService { return s },
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// RegisterAPILifecycle wires the HTTP server into the fx lifecycle.
func RegisterAPILifecycle(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			closeDatabase(db, log)
			_ = log.Sync()

			return nil
		},
	})
}

// RegisterWorkerLifecycle wires the task poller into the fx lifecycle.
func RegisterWorkerLifecycle(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	poller *worker.Poller,
) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting worker",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				defer close(done)
				poller.Run(runCtx)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				log.Warn("Worker did not stop before shutdown deadline")
			}

			closeDatabase(db, log)
			_ = log.Sync()

			return nil
		},
	})
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database connection", zap.Error(err))
	}
}
