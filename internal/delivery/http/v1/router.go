package v1

import (
	"context"
	"inys-backend/config"
	"inys-backend/internal/delivery/http/middleware"
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"inys-backend/pkg/imaging"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthChecker reports per-dependency status and whether all of them are up.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ApplicantUC   domain.ApplicantUsecase
	ProfileUC     domain.ProfileUsecase
	ViewerUC      domain.ViewerUsecase
	ArticleUC     domain.ContentUsecase[domain.Article]
	LandingpageUC domain.ContentUsecase[domain.Landingpage]
	Health        HealthChecker
	Config        *config.Config
}

// NewRouter builds the engine. Background work started for it stops with ctx.
func NewRouter(ctx context.Context, deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Multipart parts above this spill to disk
	r.MaxMultipartMemory = imaging.MaxUploadBytes + 1<<20

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.CORSOrigins, deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(ctx, middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		status, healthy := deps.Health.Check(c.Request.Context())
		if !healthy {
			response.Success(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginLimiter := middleware.RateLimitMiddleware(ctx, middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window))
	uploadLimiter := middleware.RateLimitMiddleware(ctx, middleware.UploadRateLimitConfig(deps.Config.RateLimitUploadThreshold, window))

	// Public routes
	NewProfileHandler(api, deps.ProfileUC, uploadLimiter)
	NewViewerHandler(api, deps.ViewerUC)
	NewContentHandler(api, "/articles", "Articles", deps.ArticleUC)
	NewContentHandler(api, "/landingpages", "Landing pages", deps.LandingpageUC)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthUC))
	{
		NewAuthHandler(api, protected, deps.AuthUC, loginLimiter, deps.Config.IsProduction())
		NewApplicantHandler(api, protected, deps.ApplicantUC)
	}

	return r
}
