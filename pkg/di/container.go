package di

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"task-api/application/serviceimpl"
	"task-api/domain/access"
	"task-api/domain/ports"
	"task-api/domain/repositories"
	"task-api/domain/services"
	"task-api/infrastructure/google"
	"task-api/infrastructure/memory"
	"task-api/infrastructure/messaging"
	"task-api/infrastructure/mongodb"
	natspkg "task-api/infrastructure/nats"
	"task-api/infrastructure/postgres"
	redispkg "task-api/infrastructure/redis"
	"task-api/infrastructure/storage"
	"task-api/infrastructure/websocket"
	"task-api/interfaces/api/handlers"
	"task-api/pkg/config"
	"task-api/pkg/logger"
	"task-api/pkg/scheduler"
	"task-api/pkg/utils"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure (only the configured backends are set)
	DB             *gorm.DB
	MongoClient    *mongo.Client
	MongoDB        *mongo.Database
	MemoryStore    *memory.Store
	RedisClient    *redispkg.Client
	NATSClient     *natspkg.Client
	GoogleProvider *google.Provider
	Avatars        ports.StoragePort
	Scheduler      *scheduler.GocronScheduler

	// Repositories
	UserRepository repositories.UserRepository
	TaskRepository repositories.TaskRepository

	// Auth state
	Tokens        *utils.TokenManager
	OAuthStates   ports.OAuthStateStore
	RevokedTokens ports.TokenRevocationStore
	sweepers      map[string]memory.Sweeper

	// Task events
	EventPublisher  ports.TaskEventPublisher
	EventSubscriber ports.TaskEventSubscriber
	Hub             *websocket.Hub
	cancelEvents    context.CancelFunc

	// Services
	UserService services.UserService
	TaskService services.TaskService
}

func NewContainer() *Container {
	return &Container{sweepers: make(map[string]memory.Sweeper)}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	c.initAuthStores()

	if err := c.initEvents(); err != nil {
		return err
	}

	if err := c.initGoogle(); err != nil {
		return err
	}

	if err := c.initStorage(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	return c.initScheduler()
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Info("Configuration loaded")
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.DefaultConfig()
	logConfig.Level = c.Config.Log.Level
	logConfig.Format = c.Config.Log.Format
	logConfig.Output = c.Config.Log.Output
	logConfig.Compress = c.Config.Log.Compress
	if c.Config.Log.FilePath != "" {
		logConfig.FilePath = c.Config.Log.FilePath
	}
	// unparsable LOG_MAX_* values arrive as zero and keep the defaults
	if c.Config.Log.MaxSize > 0 {
		logConfig.MaxSize = c.Config.Log.MaxSize
	}
	if c.Config.Log.MaxBackups > 0 {
		logConfig.MaxBackups = c.Config.Log.MaxBackups
	}
	if c.Config.Log.MaxAge > 0 {
		logConfig.MaxAge = c.Config.Log.MaxAge
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initRepositories() error {
	switch c.Config.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDatabase(postgres.DatabaseConfig{
			Host:     c.Config.Database.Host,
			Port:     c.Config.Database.Port,
			User:     c.Config.Database.User,
			Password: c.Config.Database.Password,
			DBName:   c.Config.Database.DBName,
			SSLMode:  c.Config.Database.SSLMode,
			Verbose:  c.Config.IsDevelopment() && c.Config.Log.Level == "debug",
		})
		if err != nil {
			return err
		}
		c.DB = db
		logger.Info("Database connected", "host", c.Config.Database.Host, "db", c.Config.Database.DBName)

		if err := postgres.Migrate(db); err != nil {
			return err
		}
		logger.Info("Database migrated")

		c.UserRepository = postgres.NewUserRepository(db)
		c.TaskRepository = postgres.NewTaskRepository(db)

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, db, err := mongodb.Connect(ctx, c.Config.Database.MongoURI, c.Config.Database.DBName)
		if err != nil {
			return err
		}
		c.MongoClient = client
		c.MongoDB = db
		logger.Info("MongoDB connected", "db", c.Config.Database.DBName)

		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		c.UserRepository = mongodb.NewUserRepository(db)
		c.TaskRepository = mongodb.NewTaskRepository(db)

	case config.DriverMemory:
		c.MemoryStore = memory.NewStore()
		c.UserRepository = memory.NewUserRepository(c.MemoryStore)
		c.TaskRepository = memory.NewTaskRepository(c.MemoryStore)
		logger.Warn("Using in-memory storage, data is lost on restart")

	default:
		return fmt.Errorf("unsupported database driver %q", c.Config.Database.Driver)
	}

	logger.Info("Repositories initialized", "driver", c.Config.Database.Driver)
	return nil
}

// initAuthStores prefers Redis and falls back to swept in-memory stores.
func (c *Container) initAuthStores() {
	if c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (using in-memory auth stores)", "error", err)
		} else {
			c.RedisClient = redisClient
			c.OAuthStates = redispkg.NewOAuthStateStore(redisClient)
			c.RevokedTokens = redispkg.NewTokenRevocationStore(redisClient)
			logger.Info("Redis auth stores initialized")
			return
		}
	}

	states := memory.NewOAuthStateStore()
	revoked := memory.NewTokenRevocationStore()
	c.OAuthStates = states
	c.RevokedTokens = revoked
	c.sweepers["sweep-oauth-states"] = states
	c.sweepers["sweep-revoked-tokens"] = revoked
	logger.Info("In-memory auth stores initialized")
}

// initEvents wires task events to the websocket hub, over NATS when configured.
func (c *Container) initEvents() error {
	c.Hub = websocket.NewHub()
	c.Hub.Start()

	if c.Config.NATS.URL != "" {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{
			URL:  c.Config.NATS.URL,
			Name: c.Config.App.Name,
		})
		if err != nil {
			logger.Warn("NATS client initialization failed (delivering events in-process)", "error", err)
		} else {
			c.NATSClient = natsClient
			c.EventPublisher = natspkg.NewPublisher(natsClient.Conn())
			c.EventSubscriber = natspkg.NewSubscriber(natsClient.Conn())
		}
	}

	if c.EventPublisher == nil {
		bus := messaging.NewLocalBus()
		c.EventPublisher = bus
		c.EventSubscriber = bus
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelEvents = cancel
	if err := c.EventSubscriber.Subscribe(ctx, c.Hub.HandleTaskEvent); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to task events: %w", err)
	}

	logger.Info("Task events wired to websocket hub", "nats", c.NATSClient != nil)
	return nil
}

func (c *Container) initGoogle() error {
	if !c.Config.GoogleEnabled() {
		logger.Info("Google login disabled (GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set)")
		return nil
	}

	provider, err := google.NewProvider(context.Background(), google.Config{
		ClientID:     c.Config.Google.ClientID,
		ClientSecret: c.Config.Google.ClientSecret,
		RedirectURL:  c.Config.Google.RedirectURL,
		JWKSURL:      c.Config.Google.JWKSURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Google provider: %w", err)
	}
	c.GoogleProvider = provider
	logger.Info("Google login enabled")
	return nil
}

func (c *Container) initStorage() error {
	cfg := c.Config.Storage
	if cfg.Type == config.StorageS3 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3, err := storage.NewS3Storage(ctx, storage.S3StorageConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
			Region:    cfg.S3.Region,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		c.Avatars = s3
	} else {
		local, err := storage.NewLocalStorage(storage.LocalStorageConfig{
			BasePath: cfg.BasePath,
			BaseURL:  cfg.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		c.Avatars = local
	}

	logger.Info("Avatar storage initialized", "provider", c.Avatars.GetProviderName())
	return nil
}

// LocalUploadsDir returns the directory to serve avatars from, or "" when they live in S3.
func (c *Container) LocalUploadsDir() string {
	if local, ok := c.Avatars.(*storage.LocalStorage); ok {
		return local.BasePath()
	}
	return ""
}

func (c *Container) initServices() error {
	policyMode, err := access.ParseMode(c.Config.Access.Mode)
	if err != nil {
		return err
	}
	policy := access.NewPolicy(policyMode, c.Config.Access.DenyAsNotFound)

	c.Tokens = utils.NewTokenManager(c.Config.JWT.Secret, c.Config.JWT.TTL)

	// an untyped nil keeps GoogleEnabled() false when no provider is configured
	var googleProvider ports.GoogleIdentityProvider
	if c.GoogleProvider != nil {
		googleProvider = c.GoogleProvider
	}

	c.UserService = serviceimpl.NewUserService(
		c.UserRepository,
		c.TaskRepository,
		c.Tokens,
		c.RevokedTokens,
		c.OAuthStates,
		googleProvider,
		c.Avatars,
	)
	c.TaskService = serviceimpl.NewTaskService(c.TaskRepository, c.UserRepository, policy, c.EventPublisher)

	logger.Info("Services initialized", "access_mode", policy.Mode, "deny_as_not_found", policy.DenyAsNotFound)
	return nil
}

func (c *Container) initScheduler() error {
	if len(c.sweepers) == 0 {
		return nil
	}

	sweepCron := c.Config.Scheduler.SweepCron
	if err := scheduler.ValidateCronExpression(sweepCron); err != nil {
		return fmt.Errorf("SWEEP_CRON: %w", err)
	}

	c.Scheduler = scheduler.NewJobScheduler()
	for id, sweeper := range c.sweepers {
		id, sweeper := id, sweeper
		err := c.Scheduler.AddJob(id, sweepCron, func() {
			if removed := sweeper.Sweep(); removed > 0 {
				logger.Debug("Swept expired entries", "job_id", id, "removed", removed)
			}
		})
		if err != nil {
			return err
		}
	}

	c.Scheduler.Start()
	return nil
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	if c.Scheduler != nil && c.Scheduler.IsRunning() {
		c.Scheduler.Stop()
	}

	if c.cancelEvents != nil {
		c.cancelEvents()
	}
	if c.EventSubscriber != nil {
		if err := c.EventSubscriber.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe from task events", "error", err)
		}
	}

	if c.Hub != nil {
		c.Hub.Stop()
		logger.Info("WebSocket hub stopped")
	}

	if c.GoogleProvider != nil {
		c.GoogleProvider.Close()
	}

	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		} else {
			logger.Info("NATS connection closed")
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	if c.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			logger.Warn("Failed to disconnect MongoDB", "error", err)
		} else {
			logger.Info("MongoDB disconnected")
		}
	}

	if c.DB != nil {
		if err := postgres.Close(c.DB); err != nil {
			logger.Warn("Failed to close database connection", "error", err)
		} else {
			logger.Info("Database connection closed")
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	svc := &handlers.Services{
		UserService:  c.UserService,
		TaskService:  c.TaskService,
		Hub:          c.Hub,
		GoogleConfig: c.Config.Google,
	}
	// only a real scheduler; a nil *GocronScheduler would be a non-nil interface
	if c.Scheduler != nil {
		svc.Scheduler = c.Scheduler
	}
	return svc
}
