package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/httpapi/controller"
	"chatnotify/internal/httpapi/middleware"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, registry *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
		otelgin.Middleware(cfg.OTELServiceName),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/status", handler.Status)
	router.PUT("/active-conversation", handler.SetActiveConversation)
	router.DELETE("/active-conversation", handler.ClearActiveConversation)
	router.PUT("/participants/:id/name", handler.SetParticipantName)
	router.POST("/refresh", handler.Refresh)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return router
}
