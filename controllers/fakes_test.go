package controllers

import (
	"context"
	"errors"
	"io"
	"sync"

	"discovery-api/apperrors"
	"discovery-api/models"
	"discovery-api/services"
)

type fakeUsers struct {
	users   map[string]*models.User
	created []services.CreateUserInput
	deleted []string
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, in services.CreateUserInput) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email {
			return nil, apperrors.Conflict("Email already exists")
		}
	}
	f.created = append(f.created, in)
	role := models.Role(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{ID: "new-user", FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Role: role, AvatarColor: models.DefaultAvatarColor}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, id string, in services.UpdateUserInput) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("User not found")
	}
	u.FirstName, u.LastName, u.Email = in.FirstName, in.LastName, in.Email
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) ActiveIDs(_ context.Context, roles ...models.Role) ([]string, error) {
	var ids []string
	for _, u := range f.users {
		if len(roles) == 0 {
			ids = append(ids, u.ID)
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				ids = append(ids, u.ID)
			}
		}
	}
	return ids, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) { return int64(len(f.users)), nil }

type fakeProjects struct {
	projects map[string]models.ProjectSummary
	// admins maps project id to linked admin ids.
	admins  map[string][]string
	// files maps project id to the storage keys of its deliverables.
	files   map[string][]string
	created []services.CreateProjectInput
	deleted []string
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: map[string]models.ProjectSummary{}, admins: map[string][]string{}, files: map[string][]string{}}
}

func (f *fakeProjects) add(id, name string, admins ...string) {
	f.projects[id] = models.ProjectSummary{Project: models.Project{ID: id, Name: name, Status: models.ProjectActive}}
	f.admins[id] = admins
}

func (f *fakeProjects) visible(scope services.Scope, id string) bool {
	if scope.IsSuperAdmin() {
		return true
	}
	for _, a := range f.admins[id] {
		if a == scope.UserID {
			return true
		}
	}
	return false
}

func (f *fakeProjects) List(_ context.Context, scope services.Scope) ([]models.ProjectSummary, error) {
	var out []models.ProjectSummary
	for id, p := range f.projects {
		if f.visible(scope, id) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, id string) (*services.ProjectDetail, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperrors.NotFound("Project not found")
	}
	return &services.ProjectDetail{ProjectSummary: p}, nil
}

func (f *fakeProjects) Create(_ context.Context, in services.CreateProjectInput) (*models.Project, []string, error) {
	f.created = append(f.created, in)
	p := &models.Project{ID: "new-project", Name: in.Name, Status: models.ProjectActive}
	f.add(p.ID, p.Name, in.Admins...)
	return p, in.Admins, nil
}

func (f *fakeProjects) Update(_ context.Context, id string, _ services.UpdateProjectInput) error {
	if _, ok := f.projects[id]; !ok {
		return apperrors.NotFound("Project not found")
	}
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) ([]string, error) {
	f.deleted = append(f.deleted, id)
	delete(f.projects, id)
	files := f.files[id]
	delete(f.files, id)
	return files, nil
}

func (f *fakeProjects) AdminIDs(_ context.Context, id string) ([]string, error) {
	return f.admins[id], nil
}

func (f *fakeProjects) EnsureAccess(_ context.Context, scope services.Scope, id string) error {
	if scope.IsSuperAdmin() {
		return nil
	}
	if !f.visible(scope, id) {
		return apperrors.Forbidden("You do not have access to this project")
	}
	return nil
}

func (f *fakeProjects) Counts(_ context.Context, scope services.Scope) (int64, int64, error) {
	list, _ := f.List(context.Background(), scope)
	return int64(len(list)), int64(len(list)), nil
}

type fakeDeliverables struct {
	items    map[string]*models.Deliverable
	uploads  []services.UploadRecord
	failSave bool
}

func newFakeDeliverables(items ...models.Deliverable) *fakeDeliverables {
	f := &fakeDeliverables{items: map[string]*models.Deliverable{}}
	for i := range items {
		d := items[i]
		f.items[d.ID] = &d
	}
	return f
}

func (f *fakeDeliverables) List(context.Context, services.Scope, services.DeliverableFilter) ([]models.DeliverableRow, error) {
	return []models.DeliverableRow{}, nil
}

func (f *fakeDeliverables) Get(_ context.Context, id string) (*models.Deliverable, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("Deliverable not found")
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDeliverables) Create(_ context.Context, in services.CreateDeliverableInput) (*models.Deliverable, error) {
	d := &models.Deliverable{ID: "new-deliverable", Name: in.Name, ProjectID: in.ProjectID, Format: in.Format, Deadline: in.Deadline, Status: models.DeliverablePending}
	if in.AssignedTo != "" {
		d.AssignedTo = &in.AssignedTo
	}
	f.items[d.ID] = d
	return d, nil
}

func (f *fakeDeliverables) Update(_ context.Context, id string, in services.UpdateDeliverableInput) (*models.Deliverable, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("Deliverable not found")
	}
	d.Name = in.Name
	return d, nil
}

func (f *fakeDeliverables) RecordUpload(_ context.Context, id string, rec services.UploadRecord) (*models.Deliverable, error) {
	if f.failSave {
		return nil, apperrors.Internal("Failed to record upload", nil)
	}
	d := f.items[id]
	f.uploads = append(f.uploads, rec)
	d.FilePath = &rec.FilePath
	d.UploadedBy = &rec.UploadedBy
	d.FileSize = &rec.FileSize
	d.Status = models.DeliverableReceivedOnTime
	return d, nil
}

func (f *fakeDeliverables) Delete(_ context.Context, id string) (string, error) {
	d, ok := f.items[id]
	if !ok {
		return "", nil
	}
	delete(f.items, id)
	if d.FilePath == nil {
		return "", nil
	}
	return *d.FilePath, nil
}

func (f *fakeDeliverables) StatusCounts(context.Context, services.Scope) (map[models.DeliverableStatus]int, error) {
	counts := map[models.DeliverableStatus]int{}
	for _, d := range f.items {
		counts[d.Status]++
	}
	return counts, nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	sent []services.NotificationInput
}

func (f *fakeNotifications) Notify(_ context.Context, in services.NotificationInput) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	out := make([]models.Notification, len(in.Recipients))
	for i, r := range in.Recipients {
		out[i] = models.Notification{ID: "n", UserID: r, Title: in.Title}
	}
	return out, nil
}

func (f *fakeNotifications) NotifyQuietly(ctx context.Context, in services.NotificationInput) {
	_, _ = f.Notify(ctx, in)
}

func (f *fakeNotifications) ListForUser(context.Context, string, services.NotificationFilter) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func (f *fakeNotifications) UnreadCount(context.Context, string) (int64, error) { return 3, nil }

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id string) error {
	if id != "n1" || userID != "u1" {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead(context.Context, string) (int64, error) { return 2, nil }

func (f *fakeNotifications) Delete(context.Context, string, string) error { return nil }

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, email, password string) (string, *models.User, error) {
	if email != "ada@example.com" || password != "correct-horse" {
		return "", nil, apperrors.Unauthorized("Invalid email or password")
	}
	return "signed-token", &models.User{ID: "u1", Email: email, Role: models.RoleAdmin}, nil
}

func (fakeAuth) ChangePassword(context.Context, string, string, string) error { return nil }

func (fakeAuth) ForgotPassword(context.Context, string) error { return nil }

func (fakeAuth) ResetPassword(_ context.Context, _, next, confirm string) error {
	if next != confirm {
		return apperrors.Validation("Passwords do not match")
	}
	return nil
}

// brokenStorage fails every read as an unreachable backend would.
type brokenStorage struct {
	services.FileStorage
}

func (brokenStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("dial tcp: connection refused")
}
