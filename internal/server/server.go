package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/nutrichat/backend/config"
	"github.com/pageza/nutrichat/backend/internal/api"
	"github.com/pageza/nutrichat/backend/internal/middleware"
	"github.com/pageza/nutrichat/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	advisor service.IAdvisorService
	logger  zerolog.Logger
}

// New creates a new server instance. limiter may be nil to disable rate limiting.
func New(cfg *config.Config, advisor service.IAdvisorService, limiter *middleware.RateLimiter, logger zerolog.Logger) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(logger),
		middleware.CORS(cfg.CORSOrigins),
	)

	s := &Server{
		router:  router,
		advisor: advisor,
		logger:  logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.GET("/health", s.health)

	var extra []gin.HandlerFunc
	if limiter != nil {
		extra = append(extra, limiter.RateLimitMiddleware())
	}
	api.NewAdviceHandler(advisor).RegisterRoutes(router.Group("/api/v1"), extra...)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": s.advisor.Records(),
	})
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("Starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
