// Package ui exposes the estimation engine over HTTP. It is the in-repo
// stand-in for the external presentation layer: it applies no statistics
// of its own and only serializes the engine's plain result data.
package ui

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SankaiAI/data-learning-lab/app"
	"github.com/SankaiAI/data-learning-lab/internal/config"
	"github.com/SankaiAI/data-learning-lab/internal/logging"
)

// Server is the HTTP front for the analysis service.
type Server struct {
	router *gin.Engine
	svc    *app.AnalysisService
	cfg    *config.Config
	log    *logging.Logger
}

// NewServer creates the server and wires its routes.
func NewServer(cfg *config.Config, svc *app.AnalysisService, log *logging.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)
	s := &Server{
		router: gin.New(),
		svc:    svc,
		cfg:    cfg,
		log:    log,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/simulate", s.handleSimulate)
	}
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Server.Port)
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
