package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"profession-server/internal/middleware"
	"profession-server/internal/service"
	"profession-server/internal/tasks"
)

// Handler обрабатывает HTTP запросы сервера генерации профессий.
type Handler struct {
	svc      *service.GenerationService
	registry *tasks.Registry
	logger   *zap.Logger
}

// New создает Handler.
func New(svc *service.GenerationService, registry *tasks.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, registry: registry, logger: logger.Named("Handler")}
}

// RouterConfig - настройки HTTP-роутера.
type RouterConfig struct {
	AllowedOrigins []string
	MediaDir       string
}

// NewRouter собирает gin-роутер со всеми маршрутами и middleware.
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.ZapLoggingMiddleware(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	api := router.Group("/api")
	{
		api.POST("/generate/stream", h.StreamGenerate)
		api.POST("/generate/fast", h.FastGenerate)
		api.GET("/generate/status/:key", h.GetGenerationStatus)
		api.GET("/professions/:key", h.GetProfession)
		api.POST("/professions/:key/audio", h.EnrichAudio)
	}

	return router
}
