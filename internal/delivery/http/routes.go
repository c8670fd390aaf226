package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pantry/backend/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/products/lookup/:barcode", handler.LookupProduct)
		v1.GET("/lookup/:barcode", handler.LookupProduct)
		v1.POST("/barcodes/normalize", handler.NormalizeBarcode)
		v1.POST("/utterances/parse", handler.ParseUtterance)

		items := v1.Group("/items")
		{
			items.GET("", handler.ListItems)
			items.POST("", handler.CreateItem)
			items.POST("/scan", handler.ScanItem)
			items.GET("/:id", handler.GetItem)
			items.PUT("/:id", handler.UpdateItem)
			items.DELETE("/:id", handler.DeleteItem)
			items.POST("/:id/increment", handler.IncrementItem)
			items.POST("/:id/decrement", handler.DecrementItem)
		}

		shopping := v1.Group("/shopping-list")
		{
			shopping.GET("", handler.ListShoppingItems)
			shopping.POST("", handler.AddShoppingItem)
			shopping.POST("/alexa-import", handler.ImportUtterance)
			shopping.PUT("/:id", handler.UpdateShoppingItem)
			shopping.DELETE("/:id", handler.DeleteShoppingItem)
		}
	}

	return router
}
