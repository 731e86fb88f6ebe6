package main

import (
	"context"
	"errors"
	"inys-backend/config"
	_ "inys-backend/docs" // Important for Swagger
	v1 "inys-backend/internal/delivery/http/v1"
	"inys-backend/internal/domain"
	"inys-backend/internal/repository/postgres"
	"inys-backend/internal/usecase"
	"inys-backend/pkg/audit"
	"inys-backend/pkg/auth"
	"inys-backend/pkg/database"
	"inys-backend/pkg/email"
	"inys-backend/pkg/logger"
	"inys-backend/pkg/redis"
	"inys-backend/pkg/security"
	"inys-backend/pkg/storage"
	"inys-backend/pkg/validation"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../docs --outputTypes go

// @title           INYS CMS API
// @version         1.0
// @description     Content, applicant and member profile backend.
// @host            localhost:3000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting INYS backend", "addr", cfg.Addr(), "env", cfg.Env)
	auditLog := audit.Init("inys-backend", cfg.Env)
	defer auditLog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.RunMigrations(ctx, dbPool); err != nil {
		logger.Log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional, rate limits fall back to memory)
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limits", "error", err)
	}
	defer redis.Close()

	// 5. Setup Object Storage
	var fileStorage domain.FileStorage = storage.Disabled{}
	s3Store, err := storage.NewS3Store(ctx, storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicURL:       cfg.S3PublicURL,
	})
	if err != nil {
		logger.Log.Warn("Object storage not configured - avatar uploads will fail", "error", err)
	} else {
		fileStorage = s3Store
	}

	// 6. Setup Email Service
	var notifier domain.AccountNotifier
	emailService := email.NewEmailService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if emailService.IsConfigured() {
		notifier = emailService
	} else {
		logger.Log.Warn("Email service not configured - accepted applicants will not be notified")
	}

	// 7. Setup Repositories
	fileRepo := postgres.NewFileRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	roleRepo := postgres.NewRoleRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool, fileRepo, userRepo)
	applicantRepo := postgres.NewApplicantRepository(dbPool, fileRepo)
	articleRepo := postgres.NewArticleRepository(dbPool, fileRepo)
	landingpageRepo := postgres.NewLandingpageRepository(dbPool)
	viewerRepo := postgres.NewViewerRepository(dbPool)
	txManager := database.NewTxManager(dbPool)

	// 8. Setup UseCases
	validate := validation.New()
	signer := auth.NewSigner(cfg.AppKeys, cfg.TokenTTL)

	loginGuard := security.NewLoginGuard(security.LoginGuardConfig{
		MaxAttempts:   cfg.LoginMaxAttempts,
		BlockDuration: time.Duration(cfg.LoginBlockMinutes) * time.Minute,
	})

	authUC := usecase.NewAuthUsecase(userRepo, signer, loginGuard)
	applicantUC := usecase.NewApplicantUsecase(applicantRepo, userRepo, roleRepo, profileRepo, txManager, validate, notifier, usecase.AcceptConfig{
		AuthorRoleName:  cfg.AuthorRoleName,
		InitialPassword: cfg.InitialPassword,
		BcryptCost:      bcrypt.DefaultCost,
		LoginURL:        cfg.PublicURL + "/admin",
	})
	profileUC := usecase.NewProfileUsecase(profileRepo, userRepo, fileRepo, fileStorage, txManager, validate, bcrypt.DefaultCost)
	viewerUC := usecase.NewViewerUsecase(viewerRepo, nil)
	articleUC := usecase.NewContentUsecase[domain.Article](articleRepo, "Article not found",
		usecase.ArticleViewsHook(articleRepo))
	landingpageUC := usecase.NewContentUsecase[domain.Landingpage](landingpageRepo, "Landing page not found",
		usecase.DailyViewHook[domain.Landingpage](viewerUC))
	healthUC := usecase.NewHealthUsecase(map[string]usecase.HealthProbe{
		"database": dbPool.Ping,
		"redis":    redis.HealthCheck, // passes while Redis is disabled
	})

	// 9. Setup Router
	router := v1.NewRouter(ctx, v1.RouterDeps{
		AuthUC:        authUC,
		ApplicantUC:   applicantUC,
		ProfileUC:     profileUC,
		ViewerUC:      viewerUC,
		ArticleUC:     articleUC,
		LandingpageUC: landingpageUC,
		Health:        healthUC,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
