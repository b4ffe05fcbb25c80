package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"discovery-api/middleware"
	"discovery-api/models"
	"discovery-api/services"
)

type createUserRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Role        string `json:"role" binding:"omitempty,role"`
	Password    string `json:"password" binding:"required"`
	AvatarColor string `json:"avatarColor"`
}

type updateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Role      string `json:"role" binding:"required,role"`
	Status    string `json:"status" binding:"required,user_status"`
}

// ListUsers returns every user without password hashes.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser creates an account and notifies the other super admins.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.Create(c.Request.Context(), services.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Role:        req.Role,
		Password:    req.Password,
		AvatarColor: req.AvatarColor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifySuperAdmins(c, services.NotificationInput{
		Title:         "New user",
		Description:   user.DisplayName() + " joined as " + string(user.Role),
		Type:          models.NotificationUser,
		Priority:      models.PriorityLow,
		RelatedUserID: &user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":          user.ID,
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"email":       user.Email,
		"role":        user.Role,
		"avatarColor": user.AvatarColor,
	})
}

// UpdateUser overwrites a user's profile fields.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.Users.Update(c.Request.Context(), c.Param("id"), services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		Status:    req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "User updated successfully")
}

// DeleteUser removes a user. Users cannot delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == middleware.CurrentUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "User deleted successfully")
}

func (h *Handler) notifySuperAdmins(c *gin.Context, in services.NotificationInput) {
	if h.Notifications == nil {
		return
	}
	ids, err := h.Users.ActiveIDs(c.Request.Context(), models.RoleSuperAdmin)
	if err != nil {
		return
	}
	h.notifyUsers(c, ids, in)
}
