package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"discovery-api/middleware"
	"discovery-api/models"
	"discovery-api/services"
)

type broadcastRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Priority    string   `json:"priority" binding:"omitempty,priority"`
	UserIDs     []string `json:"userIds"`
}

// ListNotifications returns the caller's notifications, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	filter := services.NotificationFilter{
		Type:       c.Query("type"),
		UnreadOnly: strings.EqualFold(c.Query("unread"), "true"),
	}
	items, err := h.Notifications.ListForUser(c.Request.Context(), middleware.CurrentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	n, err := h.Notifications.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Notification marked as read")
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Notification deleted successfully")
}

// BroadcastNotification sends a system notification to the listed users, or
// to every active user when none are listed.
func (h *Handler) BroadcastNotification(c *gin.Context) {
	var req broadcastRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	recipients := req.UserIDs
	if len(recipients) == 0 {
		ids, err := h.Users.ActiveIDs(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		recipients = ids
	}

	sender := middleware.CurrentUserID(c)
	created, err := h.Notifications.Notify(ctx, services.NotificationInput{
		Recipients:    recipients,
		Title:         req.Title,
		Description:   req.Description,
		Type:          models.NotificationSystem,
		Priority:      models.NotificationPriority(req.Priority),
		RelatedUserID: &sender,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sent": len(created)})
}
