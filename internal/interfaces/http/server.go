// Package http provides the HTTP adapter for the application layer.
// It translates requests into application service calls and maps
// application errors onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/service"
	"github.com/clematis-labs/justify-server/internal/domain/role"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	JWTSecret    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wiring all routes
func NewServer(
	config ServerConfig,
	submissionService service.SubmissionService,
	reviewService service.ReviewService,
	documentService service.DocumentService,
	notificationService service.NotificationService,
	reportService service.ReportService,
	resolver *role.Resolver,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())

	handlers := NewHandlers(submissionService, reviewService, documentService,
		notificationService, reportService, logger)

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(AuthMiddleware(config.JWTSecret, resolver, logger))
	{
		api.POST("/submissions", handlers.CreateSubmission)
		api.GET("/submissions", handlers.ListMySubmissions)
		api.GET("/submissions/:id", handlers.GetSubmission)
		api.POST("/submissions/:id/submit", handlers.SubmitSubmission)
		api.POST("/submissions/:id/decision", handlers.SubmitDecision)
		api.POST("/submissions/:id/comments", handlers.AddComment)
		api.POST("/submissions/:id/documents", handlers.IngestDocument)

		api.GET("/review/submissions", handlers.ListForReview)
		api.GET("/documents/:id/url", handlers.DocumentURL)
		api.GET("/notifications", handlers.ListNotifications)
		api.GET("/admin/activity-report", handlers.ActivityReport)
	}

	return server
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
