package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medverify/config"
	deliveryHttp "medverify/internal/delivery/http"
	"medverify/internal/delivery/http/handler"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/infrastructure/cache"
	"medverify/internal/infrastructure/database"
	"medverify/internal/infrastructure/llm"
	"medverify/internal/infrastructure/messaging"
	"medverify/internal/repository"
	"medverify/internal/service"
	"medverify/internal/usecase"
	"medverify/pkg/jwt"
	"medverify/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	db, err := database.NewPostgresConnection(cfg.DB, gormLogLevel(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Redis only adds webhook dedup and per-address locking; run without it when unreachable
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		logrus.Warnf("Redis unavailable, continuing without webhook deduplication: %v", err)
	} else {
		app.RedisClient = redisClient
		logrus.Info("Redis connected successfully")
	}

	app.Server = initializeServer(cfg, db, app.RedisClient)

	return app, nil
}

// Migrate creates or updates the schema of every persisted entity.
func Migrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(cfg.DB, gormLogLevel(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logrus.Info("Database migrated successfully")
	return nil
}

// IssueToken signs an identity token for local development against the dashboard API.
func IssueToken(subject, email string, ttl time.Duration) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return jwt.NewJWTService(cfg.Auth).GenerateToken(subject, email, ttl)
}

func loadConfig() (*config.Config, error) {
	setupLogger(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	setupLogger(level)
	logrus.Info("Configuration loaded successfully")

	return cfg, nil
}

// setupLogger configures the logrus logger
func setupLogger(level logrus.Level) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}

func gormLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.App.Env == "development" && cfg.App.LogLevel == "debug" {
		return logger.Info
	}
	return logger.Warn
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	log := logrus.StandardLogger()

	jwtService := jwt.NewJWTService(cfg.Auth)
	customValidator := validator.NewValidator()

	// Initialize repositories
	patientProfileRepo := repository.NewPatientProfileRepository(db)
	patientQueryRepo := repository.NewPatientQueryRepository(db)
	clinicianProfileRepo := repository.NewClinicianProfileRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize collaborators
	gateway := messaging.NewTwilioGateway(cfg.Twilio, log)
	if err := gateway.ConfigError(); err != nil {
		log.Warnf("Messaging channel not configured, webhook will answer 503: %v", err)
	}
	drafter := llm.NewOpenAIDrafter(cfg.OpenAI)
	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, patient questions will receive the apology reply")
	}
	auditService := service.NewAuditService(log, auditLogRepo)
	webhookGuard := service.NewWebhookGuard(redisClient, usecase.WebhookLockTTL(cfg.OpenAI.Timeout), log)

	// Initialize usecases
	draftingUsecase := usecase.NewQueryDraftingUsecase(log, patientQueryRepo, drafter, gateway, cfg.Drafting.HistoryWindow)
	webhookUsecase := usecase.NewChatWebhookUsecase(log, patientProfileRepo, draftingUsecase, gateway, webhookGuard)
	verificationUsecase := usecase.NewVerificationUsecase(log, patientQueryRepo, clinicianProfileRepo, auditService, gateway)
	clinicianQueryUsecase := usecase.NewClinicianQueryUsecase(log, patientQueryRepo, clinicianProfileRepo)
	clinicianProfileUsecase := usecase.NewClinicianProfileUsecase(log, clinicianProfileRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo, clinicianProfileRepo)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(webhookUsecase, customValidator, log)
	clinicianHandler := handler.NewClinicianHandler(clinicianProfileUsecase, customValidator)
	clinicianQueryHandler := handler.NewClinicianQueryHandler(clinicianQueryUsecase, verificationUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	signatureMiddleware := middleware.NewTwilioSignatureMiddleware(
		messaging.NewSignatureValidator(cfg.Twilio.AuthToken),
		cfg.App.PublicBaseURL,
		cfg.Twilio.ValidateSignature,
		log,
	)

	// Initialize router
	router := deliveryHttp.NewRouter(webhookHandler, clinicianHandler, clinicianQueryHandler, auditLogHandler, authMiddleware, corsMiddleware, signatureMiddleware)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		closeDB(app.DB)
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}
