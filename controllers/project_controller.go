package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateProjectRequest represents the request body for a standalone project
type CreateProjectRequest struct {
	ProjectName string `json:"project_name" binding:"required"`
}

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.Projects.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, projects)
}

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	project, err := h.svc.Projects.CreateStandaloneProject(c.Request.Context(), req.ProjectName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, project)
}

// GetProjectStatusHistory handles GET /api/v1/projects/:id/status
func (h *Handler) GetProjectStatusHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := h.svc.Query.GetProjectStatusHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}
