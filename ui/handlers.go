package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SankaiAI/data-learning-lab/app"
	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/errors"
	"github.com/SankaiAI/data-learning-lab/internal/simkit"
)

// AnalyzeRequest carries the user records accumulated by the caller and
// the metric kind to analyze them under.
type AnalyzeRequest struct {
	Metric experiment.MetricKind   `json:"metric" binding:"required"`
	Users  []experiment.UserRecord `json:"users" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	for i := range req.Users {
		if !req.Users[i].Arm.Valid() {
			s.renderError(c, http.StatusBadRequest,
				errors.InvalidInput("user "+req.Users[i].ID+" has an unknown arm"))
			return
		}
	}

	report, err := s.svc.Analyze(c.Request.Context(), req.Users, req.Metric)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SimulateRequest runs a seeded synthetic experiment and analyzes it in
// one call. Missing knobs fall back to the configured defaults.
type SimulateRequest struct {
	simkit.Config
	IncludeUsers bool `json:"include_users"`
}

// SimulateResponse returns the report and, on request, the generated
// population for inspection.
type SimulateResponse struct {
	Report *app.Report             `json:"report"`
	Users  []experiment.UserRecord `json:"users,omitempty"`
}

func (s *Server) handleSimulate(c *gin.Context) {
	req := SimulateRequest{Config: simkit.DefaultConfig(experiment.MetricProportion)}
	req.Config.UserCount = s.cfg.Sim.UserCount
	req.Config.TrueLift = s.cfg.Sim.TrueLift
	req.Config.Seed = s.cfg.Sim.Seed
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.renderError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
			return
		}
	}
	if req.Config.Metric == "" {
		req.Config.Metric = experiment.MetricProportion
	}
	if _, err := experiment.MetricFor(req.Config.Metric); err != nil {
		s.renderError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}

	users := simkit.NewGenerator(req.Config).Run()
	report, err := s.svc.Analyze(c.Request.Context(), users, req.Config.Metric)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	resp := SimulateResponse{Report: report}
	if req.IncludeUsers {
		resp.Users = users
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	s.log.Warn("request failed: %v", err)
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
