package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"travelaigent.app/agent/core/config"
)

// NewRouter builds the gin engine with middleware and routes mounted.
func NewRouter(cfg config.Config, handler *Handler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(Recovery())
	router.Use(RequestLogger())
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/agent/status", handler.Status)
		v1.POST("/agent/search", handler.TriggerSearch)
		v1.GET("/deals", handler.ListDeals)
	}

	return router
}
