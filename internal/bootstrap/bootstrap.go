package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/campusfound/internal/app/auth"
	appControllers "github.com/yigit/campusfound/internal/app/controllers"
	appMigrations "github.com/yigit/campusfound/internal/app/migrations"
	appRepos "github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/app/repositories/memory"
	appRoutes "github.com/yigit/campusfound/internal/app/routes"
	appServices "github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/config"
	"github.com/yigit/campusfound/internal/db"
	appMiddleware "github.com/yigit/campusfound/internal/middleware"
	pkgAuth "github.com/yigit/campusfound/internal/pkg/auth"
	"github.com/yigit/campusfound/internal/pkg/filestorage"
	"github.com/yigit/campusfound/internal/pkg/idempotency"
	"github.com/yigit/campusfound/internal/pkg/logger"
	"github.com/yigit/campusfound/internal/pkg/websocket"
	"github.com/yigit/campusfound/internal/seed"
)

// Stores holds the persistence backends selected by the database driver
type Stores struct {
	Users         appServices.UserStore
	Items         appServices.ItemStore
	Claims        appServices.ClaimStore
	ActivityLogs  appServices.ActivityLogStore
	Notifications appServices.NotificationStore
	// Ping checks the backend for the health endpoint
	Ping func(ctx context.Context) error
	// Close releases connections
	Close func()
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Stores         *Stores
	Redis          *redis.Client
	FileStorage    filestorage.FileStorage
	Hub            *websocket.Hub
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	SideEffects    *appServices.SideEffects
	AuthService    *appServices.AuthService
	UserService    *appServices.UserService
	ItemService    *appServices.ItemService
	ClaimService   *appServices.ClaimService
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: logger.Format(cfg.Logging.Format),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStores connects the configured database driver and runs migrations.
func SetupStores(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		store := memory.New()
		return &Stores{
			Users:         store.Users,
			Items:         store.Items,
			Claims:        store.Claims,
			ActivityLogs:  store.ActivityLogs,
			Notifications: store.Notifications,
			Ping:          func(context.Context) error { return nil },
			Close:         func() {},
		}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool).Up(ctx); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
	}

	repos := appRepos.NewRepositories(database.Pool)
	return &Stores{
		Users:         repos.UserRepository,
		Items:         repos.ItemRepository,
		Claims:        repos.ClaimRepository,
		ActivityLogs:  repos.ActivityLogRepository,
		Notifications: repos.NotificationRepository,
		Ping:          database.Ping,
		Close:         database.Close,
	}, nil
}

// SetupFileStorage creates the local or MinIO storage backend
func SetupFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == config.StorageMinio {
		m := cfg.Storage.Minio
		return filestorage.NewMinioStorage(ctx, filestorage.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
			PublicURL: m.PublicURL,
		})
	}
	return filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.UploadsURL())
}

// SetupRedis connects to Redis when a URL is configured. A nil client means idempotency keys are ignored.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		lgr.Info().Msg("Redis not configured, Idempotency-Key headers are ignored")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	lgr.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return client, nil
}

// BuildDependencies initializes services and controllers on top of the stores.
func BuildDependencies(ctx context.Context, cfg *config.Config, stores *Stores, redisClient *redis.Client, storage filestorage.FileStorage, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Stores:      stores,
		Redis:       redisClient,
		FileStorage: storage,
		Logger:      lgr,
	}

	var dedupe idempotency.Store = idempotency.NoopStore{}
	if redisClient != nil {
		dedupe = idempotency.NewRedisStore(redisClient, cfg.Redis.IdempotencyTTL)
	}

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.AuthzService = appAuth.NewAuthorizationService(stores.Users)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.JWT.AccessTokenExpiration,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.SideEffects = appServices.NewSideEffects(stores.Notifications, stores.ActivityLogs, deps.Hub, logger.Component("side_effects"))
	deps.AuthService = appServices.NewAuthService(stores.Users, deps.AuthzService, deps.JWTService, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(stores.Users, deps.SideEffects, cfg.Admin.BootstrapToken, logger.Component("users"))
	deps.ItemService = appServices.NewItemService(stores.Items, deps.SideEffects, storage, dedupe, logger.Component("items"))
	deps.ClaimService = appServices.NewClaimService(stores.Claims, stores.Items, deps.SideEffects, storage, logger.Component("claims"))
	notificationService := appServices.NewNotificationService(stores.Notifications)
	activityLogService := appServices.NewActivityLogService(stores.ActivityLogs)

	if err := seed.EnsureAdmin(ctx, deps.UserService, cfg, lgr); err != nil {
		return nil, fmt.Errorf("failed to seed administrator: %w", err)
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		User:         appControllers.NewUserController(deps.UserService, logger.Component("users")),
		Item:         appControllers.NewItemController(deps.ItemService, cfg.Storage.MaxUploadSize, logger.Component("items")),
		Claim:        appControllers.NewClaimController(deps.ClaimService, cfg.Storage.MaxUploadSize, logger.Component("claims")),
		Notification: appControllers.NewNotificationController(notificationService, deps.Hub, websocket.NewUpgrader(cfg.WebsocketOrigins()...), logger.Component("websocket")),
		ActivityLog:  appControllers.NewActivityLogController(activityLogService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	if err := appMiddleware.RegisterBindingValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize * 2
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(),
		appMiddleware.Timeout(cfg.Server.RequestTimeout),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, func(ctx *gin.Context) error {
		if err := deps.Stores.Ping(ctx.Request.Context()); err != nil {
			return err
		}
		if deps.Redis != nil {
			return deps.Redis.Ping(ctx.Request.Context()).Err()
		}
		return nil
	})

	if cfg.Storage.Driver == config.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Static file serving configured for uploads directory")
	}
	return router, nil
}
