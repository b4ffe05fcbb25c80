package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"discovery-api/middleware"
	"discovery-api/models"
	"discovery-api/services"
	"discovery-api/utils"
)

type createProjectRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Sector       string   `json:"sector"`
	DeliveryDate string   `json:"deliveryDate"`
	Admins       []string `json:"admins"`
}

type updateProjectRequest struct {
	Name         string    `json:"name" binding:"required"`
	Description  string    `json:"description"`
	Sector       string    `json:"sector"`
	Status       string    `json:"status" binding:"required,project_status"`
	DeliveryDate string    `json:"deliveryDate"`
	Admins       *[]string `json:"admins"`
}

// ListProjects returns the projects visible to the caller with their counts.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.Projects.List(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject returns one project with its admins.
func (h *Handler) GetProject(c *gin.Context) {
	scope := middleware.CurrentScope(c)
	id := c.Param("id")

	project, err := h.Projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !scope.IsSuperAdmin() && !h.canSeeProject(c, scope, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) canSeeProject(c *gin.Context, scope services.Scope, id string) bool {
	visible, err := h.Projects.List(c.Request.Context(), scope)
	if err != nil {
		return false
	}
	for _, p := range visible {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CreateProject inserts a project and links its admins atomically. An admin
// creating a project is linked to it automatically.
func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	deliveryDate, err := utils.ParseDate(req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deliveryDate"})
		return
	}

	scope := middleware.CurrentScope(c)
	admins := req.Admins
	if scope.Role == models.RoleAdmin {
		admins = append([]string{scope.UserID}, admins...)
	}

	project, linked, err := h.Projects.Create(c.Request.Context(), services.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Sector:       req.Sector,
		DeliveryDate: deliveryDate,
		Admins:       admins,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyUsers(c, linked, services.NotificationInput{
		Title:       "New project assignment",
		Description: "You were added as an admin of " + project.Name,
		Type:        models.NotificationProject,
		Priority:    models.PriorityMedium,
		ProjectID:   &project.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":           project.ID,
		"name":         project.Name,
		"description":  project.Description,
		"sector":       project.Sector,
		"deliveryDate": project.DeliveryDate,
		"status":       project.Status,
		"admins":       linked,
	})
}

// UpdateProject overwrites a project. Admins may only edit their projects.
func (h *Handler) UpdateProject(c *gin.Context) {
	var req updateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	deliveryDate, err := utils.ParseDate(req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deliveryDate"})
		return
	}

	id := c.Param("id")
	if err := h.Projects.EnsureAccess(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		respondError(c, err)
		return
	}

	in := services.UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Sector:       req.Sector,
		Status:       req.Status,
		DeliveryDate: deliveryDate,
	}
	if req.Admins != nil {
		in.Admins = append([]string{}, (*req.Admins)...)
	}

	if err := h.Projects.Update(c.Request.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Project updated successfully")
}

// DeleteProject removes a project with its deliverables and admin links.
func (h *Handler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.Projects.EnsureAccess(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		respondError(c, err)
		return
	}
	filePaths, err := h.Projects.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.removeFiles(c.Request.Context(), filePaths...)
	message(c, http.StatusOK, "Project deleted successfully")
}

// notifyUsers sends in to recipients other than the caller.
func (h *Handler) notifyUsers(c *gin.Context, recipients []string, in services.NotificationInput) {
	if h.Notifications == nil {
		return
	}
	self := middleware.CurrentUserID(c)
	for _, id := range recipients {
		if id != self {
			in.Recipients = append(in.Recipients, id)
		}
	}
	if len(in.Recipients) == 0 {
		return
	}
	h.Notifications.NotifyQuietly(c.Request.Context(), in)
}
