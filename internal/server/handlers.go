package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/usecase"
)

type employeeRequest struct {
	Name           string `json:"name"`
	GitHubUsername string `json:"github_username"`
	Active         *bool  `json:"active"`
}

type updateResponse struct {
	Updated int    `json:"updated"`
	Message string `json:"message"`
}

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.dashboard.Team(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListEmployees(c *gin.Context) {
	var filter domain.EmployeeFilter
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Active = &active
	}

	resp, err := s.employees.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	resp, err := s.employees.Register(c.Request.Context(), usecase.EmployeeInput{
		Name:           req.Name,
		GitHubUsername: req.GitHubUsername,
		Active:         active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetEmployee(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.dashboard.EmployeeDetail(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEmployee(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	current, err := s.employees.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	resp, err := s.employees.Edit(ctx, id, usecase.EmployeeInput{
		Name:           req.Name,
		GitHubUsername: req.GitHubUsername,
		Active:         active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEmployee(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.employees.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateMetrics snapshots every active employee. Overlapping requests share one batch.
func (s *Server) UpdateMetrics(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	v, err, shared := s.updates.Do("update", func() (interface{}, error) {
		return s.updater.UpdateAll(ctx)
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	created := v.([]domain.Metric)
	if shared {
		s.logger.Debug("joined an update already in progress")
	}

	c.JSON(http.StatusOK, updateResponse{
		Updated: len(created),
		Message: fmt.Sprintf("Metrics updated for %d active employee(s).", len(created)),
	})
}
