package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"discovery-api/middleware"
)

// DashboardStats returns the headline counters of the caller's dashboard.
func (h *Handler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	scope := middleware.CurrentScope(c)

	total, active, err := h.Projects.Counts(ctx, scope)
	if err != nil {
		respondError(c, err)
		return
	}

	byStatus, err := h.Deliverables.StatusCounts(ctx, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	deliverables := 0
	for _, n := range byStatus {
		deliverables += n
	}

	unread, err := h.Notifications.UnreadCount(ctx, scope.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	stats := gin.H{
		"projects":            total,
		"activeProjects":      active,
		"deliverables":        deliverables,
		"byStatus":            byStatus,
		"unreadNotifications": unread,
	}
	if middleware.HasCapability(scope.Role, middleware.CapViewUsers) {
		users, err := h.Users.Count(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		stats["users"] = users
	}

	c.JSON(http.StatusOK, stats)
}
