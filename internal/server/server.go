// Package server exposes the team metrics use cases as a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Updater runs a metrics update for every active employee.
type Updater interface {
	UpdateAll(ctx context.Context) ([]domain.Metric, error)
}

type Params struct {
	Employees *usecase.EmployeeService
	Dashboard *usecase.Dashboard
	Updater   Updater
	// Gatherer backs /metrics; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type Server struct {
	engine    *gin.Engine
	employees *usecase.EmployeeService
	dashboard *usecase.Dashboard
	updater   Updater
	logger    *zap.Logger
	updates   singleflight.Group
}

func New(p Params) *Server {
	s := &Server{
		employees: p.Employees,
		dashboard: p.Dashboard,
		updater:   p.Updater,
		logger:    p.Logger.Named("server"),
	}
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.engine = s.newEngine(gatherer)
	return s
}

func (s *Server) newEngine(gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/dashboard", s.GetDashboard)
	api.POST("/update", s.UpdateMetrics)

	employees := api.Group("/employees")
	employees.GET("", s.ListEmployees)
	employees.POST("", s.CreateEmployee)
	employees.GET("/:id", s.GetEmployee)
	employees.PUT("/:id", s.UpdateEmployee)
	employees.DELETE("/:id", s.DeleteEmployee)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, zap.Error(err.Err))
		}
		logger.Debug("request", fields...)
	}
}
