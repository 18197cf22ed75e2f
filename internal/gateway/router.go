package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bizmatters/agent-builder/number-advisor/internal/metrics"
)

// NewRouter wires middleware and routes
func NewRouter(h *Handler, httpMetrics *metrics.HTTPMetrics, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(log),
		Tracing(),
		httpMetrics.Middleware(),
		AccessLog(log),
		Recovery(log),
	)

	// Health checks MUST be at the root for the WebService standard
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/options", h.GetOptions)
	api.POST("/qa", h.AskQA)
	api.POST("/qa/simple", h.AskQASimple)

	return router
}
