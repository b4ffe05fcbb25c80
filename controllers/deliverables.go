package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"discovery-api/apperrors"
	"discovery-api/middleware"
	"discovery-api/models"
	"discovery-api/services"
	"discovery-api/utils"
)

type createDeliverableRequest struct {
	Name       string `json:"name" binding:"required"`
	ProjectID  string `json:"projectId" binding:"required"`
	Format     string `json:"format" binding:"required"`
	Deadline   string `json:"deadline"`
	AssignedTo string `json:"assignedTo"`
}

type updateDeliverableRequest struct {
	Name       string `json:"name" binding:"required"`
	Status     string `json:"status" binding:"required,deliverable_status"`
	UploadedBy string `json:"uploadedBy"`
	FileSize   string `json:"fileSize"`
}

// ListDeliverables returns the caller's visible deliverables. Optional
// filters: projectId, status, search.
func (h *Handler) ListDeliverables(c *gin.Context) {
	filter := services.DeliverableFilter{
		ProjectID: strings.TrimSpace(c.Query("projectId")),
		Search:    c.Query("search"),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.DeliverableStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deliverable status"})
			return
		}
		filter.Status = status
	}

	rows, err := h.Deliverables.List(c.Request.Context(), middleware.CurrentScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateDeliverable adds a deliverable to a project the caller manages.
func (h *Handler) CreateDeliverable(c *gin.Context) {
	var req createDeliverableRequest
	if !bindJSON(c, &req) {
		return
	}
	deadline, err := utils.ParseDeadline(req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Projects.EnsureAccess(ctx, middleware.CurrentScope(c), req.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	d, err := h.Deliverables.Create(ctx, services.CreateDeliverableInput{
		Name:       req.Name,
		ProjectID:  req.ProjectID,
		Format:     req.Format,
		Deadline:   deadline,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if d.AssignedTo != nil {
		h.notifyUsers(c, []string{*d.AssignedTo}, services.NotificationInput{
			Title:         "New deliverable assigned",
			Description:   d.Name + " was assigned to you",
			Type:          models.NotificationProject,
			Priority:      models.PriorityMedium,
			ProjectID:     &d.ProjectID,
			DeliverableID: &d.ID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         d.ID,
		"name":       d.Name,
		"projectId":  d.ProjectID,
		"format":     d.Format,
		"deadline":   d.Deadline,
		"assignedTo": d.AssignedTo,
		"status":     d.Status,
	})
}

// UpdateDeliverable applies the dashboard's edit form.
func (h *Handler) UpdateDeliverable(c *gin.Context) {
	var req updateDeliverableRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	current, err := h.Deliverables.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Projects.EnsureAccess(ctx, middleware.CurrentScope(c), current.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	_, err = h.Deliverables.Update(ctx, current.ID, services.UpdateDeliverableInput{
		Name:       req.Name,
		Status:     req.Status,
		UploadedBy: req.UploadedBy,
		FileSize:   req.FileSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Deliverable updated successfully")
}

// DeleteDeliverable removes the row and its stored file. Unknown ids succeed.
func (h *Handler) DeleteDeliverable(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.Deliverables.Get(ctx, c.Param("id"))
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		message(c, http.StatusOK, "Deliverable deleted successfully")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Projects.EnsureAccess(ctx, middleware.CurrentScope(c), current.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	filePath, err := h.Deliverables.Delete(ctx, current.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.removeFiles(ctx, filePath)
	message(c, http.StatusOK, "Deliverable deleted successfully")
}

// removeFiles deletes stored files whose rows are already gone. Failures are
// logged only; the rows cannot be restored.
func (h *Handler) removeFiles(ctx context.Context, keys ...string) {
	if h.Storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := h.Storage.Delete(ctx, key); err != nil {
			log.Printf("Warning: failed to remove file %s: %v", key, err)
		}
	}
}

// canUpload allows the assignee and managers of the deliverable's project.
func (h *Handler) canUpload(c *gin.Context, d *models.Deliverable) error {
	scope := middleware.CurrentScope(c)
	if d.AssignedTo != nil && *d.AssignedTo == scope.UserID && middleware.HasCapability(scope.Role, middleware.CapUploadDeliverables) {
		return nil
	}
	if !middleware.HasCapability(scope.Role, middleware.CapManageDeliverables) {
		return apperrors.Forbidden("Insufficient permissions")
	}
	return h.Projects.EnsureAccess(c.Request.Context(), scope, d.ProjectID)
}

// UploadDeliverable stores the multipart "file" field for a deliverable. The
// extension must match the deliverable's format.
func (h *Handler) UploadDeliverable(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.Deliverables.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.canUpload(c, d); err != nil {
		respondError(c, err)
		return
	}

	limit := h.uploadLimit()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds %s", utils.FormatFileSize(limit))})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if fileHeader.Size > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds %s", utils.FormatFileSize(limit))})
		return
	}
	if ext := utils.FileExtension(fileHeader.Filename); ext != services.NormalizeFormat(d.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File type not allowed: expected .%s", services.NormalizeFormat(d.Format))})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	key := services.DeliverableFileKey(d.ID, utils.SafeFilename(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.Storage.Save(ctx, key, src, fileHeader.Size, contentType); err != nil {
		respondError(c, apperrors.Internal("Failed to save file", err))
		return
	}

	updated, err := h.Deliverables.RecordUpload(ctx, d.ID, services.UploadRecord{
		UploadedBy: h.uploaderName(c),
		FileSize:   utils.FormatFileSize(fileHeader.Size),
		FilePath:   key,
	})
	if err != nil {
		// Remove file if database insert fails
		if delErr := h.Storage.Delete(ctx, key); delErr != nil {
			log.Printf("Warning: failed to remove orphaned upload %s: %v", key, delErr)
		}
		respondError(c, err)
		return
	}
	if d.FilePath != nil && *d.FilePath != key {
		if err := h.Storage.Delete(ctx, *d.FilePath); err != nil {
			log.Printf("Warning: failed to remove previous upload %s: %v", *d.FilePath, err)
		}
	}

	if admins, err := h.Projects.AdminIDs(ctx, d.ProjectID); err == nil {
		h.notifyUsers(c, admins, services.NotificationInput{
			Title:         "File received",
			Description:   fmt.Sprintf("%s uploaded %s (%s)", h.uploaderName(c), d.Name, updated.Status),
			Type:          models.NotificationUpload,
			Priority:      models.PriorityMedium,
			ProjectID:     &d.ProjectID,
			DeliverableID: &d.ID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "File uploaded successfully",
		"id":         updated.ID,
		"status":     updated.Status,
		"uploadedBy": updated.UploadedBy,
		"uploadedAt": updated.UploadedAt,
		"fileSize":   updated.FileSize,
	})
}

func (h *Handler) uploaderName(c *gin.Context) string {
	id := middleware.CurrentUserID(c)
	if h.Users != nil {
		if u, err := h.Users.Get(c.Request.Context(), id); err == nil {
			return u.DisplayName()
		}
	}
	return c.GetString(middleware.ContextEmail)
}

// DownloadDeliverableFile streams the stored file, or redirects to a
// presigned URL when the backend supports one.
func (h *Handler) DownloadDeliverableFile(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.Deliverables.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	scope := middleware.CurrentScope(c)
	isAssignee := d.AssignedTo != nil && *d.AssignedTo == scope.UserID
	if !isAssignee {
		if err := h.Projects.EnsureAccess(ctx, scope, d.ProjectID); err != nil {
			respondError(c, err)
			return
		}
	}
	if d.FilePath == nil || *d.FilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	url, err := h.Storage.PresignedURL(ctx, *d.FilePath, h.PresignTTL)
	if err == nil {
		c.Redirect(http.StatusFound, url)
		return
	}
	if !errors.Is(err, services.ErrPresignUnsupported) {
		respondError(c, apperrors.Internal("Failed to sign download URL", err))
		return
	}

	rc, err := h.Storage.Open(ctx, *d.FilePath)
	if errors.Is(err, services.ErrFileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		respondError(c, apperrors.Internal("Failed to read file", err))
		return
	}
	defer rc.Close()

	name := path.Base(*d.FilePath)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}
