package routes

import (
	"sentinel-backend/internal/config"
	"sentinel-backend/internal/geo"
	"sentinel-backend/internal/handlers"
	"sentinel-backend/internal/mailer"
	"sentinel-backend/internal/middleware"
	"sentinel-backend/internal/ratelimit"
	"sentinel-backend/internal/services"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))

	router.Static("/uploads", cfg.File.UploadPath)

	// 追踪管线的三项能力相互独立，协作方为 nil 即关闭
	var limiter services.Limiter
	if !cfg.Track.DisableRateLimit {
		fw := ratelimit.NewFixedWindow(
			time.Duration(cfg.Track.RateLimitWindow)*time.Second,
			cfg.Track.RateLimitMaxHits)
		fw.StartSweeper(time.Duration(cfg.Track.SweepInterval) * time.Second)
		limiter = fw
	}

	var geoResolver services.GeoResolver
	if !cfg.Track.DisableGeo {
		geoResolver = geo.NewResolver(cfg.Track.GeoEndpoint,
			time.Duration(cfg.Track.GeoTimeoutSeconds)*time.Second)
	}

	var sender services.Sender
	if !cfg.Track.DisableNotifications && cfg.Mail.APIKey != "" {
		sender = mailer.NewClient(cfg.Mail.APIKey, cfg.Mail.From)
	}

	authService := services.NewAuthService(db)
	resumeService := services.NewResumeService(db, cfg.File.UploadPath, cfg.File.MaxResumeSize)
	trackService := services.NewTrackService(
		services.NewResumeStore(db),
		services.NewEventStore(db),
		services.NewEmailResolver(db),
		sender, limiter, geoResolver)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	resumeHandler := handlers.NewResumeHandler(resumeService)
	trackHandler := handlers.NewTrackHandler(trackService)

	api := router.Group("/api")

	public := api.Group("")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// 追踪接口对匿名访客开放
		public.POST("/track", trackHandler.Track)
		public.GET("/public/resumes/:id", resumeHandler.GetPublicResume)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db, cfg))
	{
		user := protected.Group("/auth")
		{
			user.GET("/me", authHandler.GetMe)
			user.POST("/logout", authHandler.Logout)
		}

		resumes := protected.Group("/resumes")
		{
			resumes.GET("", resumeHandler.GetResumes)
			resumes.POST("", resumeHandler.CreateResume)
			resumes.GET("/:id", resumeHandler.GetResume)
			resumes.PUT("/:id", resumeHandler.UpdateResume)
			resumes.DELETE("/:id", resumeHandler.DeleteResume)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "服务运行正常",
		})
	})

	return router
}
