package handler

import (
	"github.com/SergeiKhy/affiliate-storefront/internal/middleware"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services зависимости роутера
type Services struct {
	Catalog service.CatalogService
	Pages   service.PageService
	Admin   service.AdminService
	Tracker service.ClickTracker
	Uploads service.UploadService
	// Clicks необязателен, нужен только для /health
	Clicks service.ClickProcessor
}

type RouterConfig struct {
	// Demo сервис работает на демо-данных
	Demo bool
	// UploadDir раздаётся по /uploads, пустой отключает раздачу
	UploadDir   string
	RateLimiter *middleware.RateLimiter
	AdminToken  middleware.AdminTokenConfig
}

func NewRouter(services Services, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	// Rate limiting для всех запросов
	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	catalogHandler := NewCatalogHandler(services.Catalog, services.Pages, logger)
	clickHandler := NewClickHandler(services.Tracker, logger)
	adminHandler := NewAdminHandler(services.Admin, services.Pages, logger)
	uploadHandler := NewUploadHandler(services.Uploads, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck(cfg.Demo, services.Clicks))

		v1.GET("/home", catalogHandler.Home)
		v1.GET("/states", catalogHandler.States)
		v1.GET("/categories", catalogHandler.Categories)
		v1.GET("/categories/:id/states", catalogHandler.CategoryStates)
		v1.GET("/suggestions/:state_id", catalogHandler.Suggestion)
		v1.POST("/clicks", clickHandler.TrackClick)
	}

	// Права проверяет сервис, middleware только достаёт токен
	admin := v1.Group("/admin", middleware.AdminToken(cfg.AdminToken))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/analytics", adminHandler.Analytics)

		admin.GET("/categories", adminHandler.ListCategories)
		admin.POST("/categories", adminHandler.CreateCategory)
		admin.PUT("/categories/:id", adminHandler.UpdateCategory)
		admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

		admin.GET("/states", adminHandler.ListStates)
		admin.POST("/states", adminHandler.CreateState)
		admin.PUT("/states/:id", adminHandler.UpdateState)
		admin.DELETE("/states/:id", adminHandler.DeleteState)

		admin.GET("/products", adminHandler.ListProducts)
		admin.POST("/products", adminHandler.CreateProduct)
		admin.PUT("/products/:id", adminHandler.UpdateProduct)
		admin.DELETE("/products/:id", adminHandler.DeleteProduct)

		admin.POST("/uploads", uploadHandler.Upload)
	}

	// Исходящий переход на партнёрскую ссылку
	router.GET("/go/:product_id", clickHandler.Redirect)

	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	return router
}
