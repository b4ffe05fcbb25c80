package controllers

import (
	"context"
	"time"

	"discovery-api/models"
	"discovery-api/services"
)

// UserStore is the user persistence the handlers need.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id string, in services.UpdateUserInput) error
	Delete(ctx context.Context, id string) error
	ActiveIDs(ctx context.Context, roles ...models.Role) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type ProjectStore interface {
	List(ctx context.Context, scope services.Scope) ([]models.ProjectSummary, error)
	Get(ctx context.Context, id string) (*services.ProjectDetail, error)
	Create(ctx context.Context, in services.CreateProjectInput) (*models.Project, []string, error)
	Update(ctx context.Context, id string, in services.UpdateProjectInput) error
	Delete(ctx context.Context, id string) ([]string, error)
	AdminIDs(ctx context.Context, projectID string) ([]string, error)
	EnsureAccess(ctx context.Context, scope services.Scope, projectID string) error
	Counts(ctx context.Context, scope services.Scope) (total, active int64, err error)
}

type DeliverableStore interface {
	List(ctx context.Context, scope services.Scope, filter services.DeliverableFilter) ([]models.DeliverableRow, error)
	Get(ctx context.Context, id string) (*models.Deliverable, error)
	Create(ctx context.Context, in services.CreateDeliverableInput) (*models.Deliverable, error)
	Update(ctx context.Context, id string, in services.UpdateDeliverableInput) (*models.Deliverable, error)
	RecordUpload(ctx context.Context, id string, rec services.UploadRecord) (*models.Deliverable, error)
	Delete(ctx context.Context, id string) (string, error)
	StatusCounts(ctx context.Context, scope services.Scope) (map[models.DeliverableStatus]int, error)
}

type NotificationStore interface {
	Notify(ctx context.Context, in services.NotificationInput) ([]models.Notification, error)
	NotifyQuietly(ctx context.Context, in services.NotificationInput)
	ListForUser(ctx context.Context, userID string, f services.NotificationFilter) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, next, confirm string) error
}

// Handler groups the HTTP handlers and their dependencies.
type Handler struct {
	Users         UserStore
	Projects      ProjectStore
	Deliverables  DeliverableStore
	Notifications NotificationStore
	Auth          Authenticator
	Storage       services.FileStorage

	UploadMaxBytes int64
	PresignTTL     time.Duration
}

const defaultUploadMaxBytes = 25 << 20

func (h *Handler) uploadLimit() int64 {
	if h.UploadMaxBytes > 0 {
		return h.UploadMaxBytes
	}
	return defaultUploadMaxBytes
}
