// Package server exposes the session controller as a JSON API for a browser front-end.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/session"
)

type Config struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type Server struct {
	controller *session.Controller
	logger     *zap.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

func New(cfg Config, controller *session.Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(cfg.AllowedOrigins))

	s := &Server{
		controller: controller,
		logger:     logger,
		engine:     engine,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.routes()
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(started)),
		)
	}
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	api.GET("/state", s.getState)
	api.PUT("/resume", s.putResume)
	api.POST("/jobs", s.createJob)
	api.GET("/jobs/:id", s.getJob)
	api.PATCH("/jobs/:id", s.updateJob)
	api.DELETE("/jobs/:id", s.deleteJob)
	api.POST("/analyze", s.analyze)
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
}

type resumeRequest struct {
	Resume *string `json:"resume"`
}

type jobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateJobRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type analyzeResponse struct {
	Results []matching.MatchResult `json:"results"`
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Snapshot())
}

func (s *Server) putResume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Resume == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "body must be {\"resume\": string}"})
		return
	}
	s.controller.SetResume(*req.Resume)
	c.Status(http.StatusNoContent)
}

func (s *Server) createJob(c *gin.Context) {
	var req jobRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	job := s.controller.AddJobWith(req.Title, req.Description)
	c.JSON(http.StatusCreated, job)
}

func (s *Server) getJob(c *gin.Context) {
	job, ok := s.controller.JobByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) updateJob(c *gin.Context) {
	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	field, err := session.ParseField(req.Field)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ok, err := s.controller.UpdateJob(c.Param("id"), field, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteJob(c *gin.Context) {
	if !s.controller.RemoveJob(c.Param("id")) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) analyze(c *gin.Context) {
	// A client that goes away does not cancel the analysis.
	err := s.controller.Submit(context.WithoutCancel(c.Request.Context()))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, analyzeResponse{Results: s.controller.Snapshot().Results})
	case matching.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrBusy):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, errorResponse{Error: matching.ErrAnalysisFailed.Error()})
	}
}
