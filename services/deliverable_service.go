package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"discovery-api/apperrors"
	"discovery-api/models"
)

// CreateDeliverableInput is the deliverable creation payload.
type CreateDeliverableInput struct {
	Name       string
	ProjectID  string
	Format     string
	Deadline   *time.Time
	AssignedTo string
}

// UpdateDeliverableInput overwrites name and receipt state. Status only
// signals whether the file was received; the stored status is always derived.
type UpdateDeliverableInput struct {
	Name       string
	Status     string
	UploadedBy string
	FileSize   string
}

// DeliverableFilter narrows the list query.
type DeliverableFilter struct {
	ProjectID string
	Status    models.DeliverableStatus
	Search    string
}

// UploadRecord describes a stored file for RecordUpload.
type UploadRecord struct {
	UploadedBy string
	FileSize   string
	FilePath   string
}

// DeliverableService reads and writes deliverables and applies the status rule.
type DeliverableService struct {
	db      *gorm.DB
	clock   clock
	dueSoon time.Duration
}

// NewDeliverableService instantiates the service. dueSoon is the window before
// a deadline in which an outstanding deliverable counts as pending rather
// than upcoming.
func NewDeliverableService(db *gorm.DB, dueSoon time.Duration) *DeliverableService {
	return &DeliverableService{db: db, dueSoon: dueSoon}
}

// Status applies DeriveDeliverableStatus at the current time.
func (s *DeliverableService) Status(deadline, uploadedAt *time.Time) models.DeliverableStatus {
	return DeriveDeliverableStatus(deadline, uploadedAt, s.clock.now(), s.dueSoon)
}

// likeEscaper makes user search text match literally inside LIKE ... ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

const deliverableListSelect = `SELECT
  d.id, d.name, d.projectId, d.format, d.deadline, d.assignedTo, d.status,
  d.uploadedBy, d.uploadedAt, d.fileSize, d.filePath IS NOT NULL AS hasFile, d.createdAt,
  p.name AS project,
  u.firstName AS assignedToFirstName,
  u.lastName AS assignedToLastName
FROM deliverables d
LEFT JOIN projects p ON d.projectId = p.id
LEFT JOIN users u ON d.assignedTo = u.id`

// List returns deliverables visible to scope with the project name, the
// assignee display name and a status derived at read time.
func (s *DeliverableService) List(ctx context.Context, scope Scope, filter DeliverableFilter) ([]models.DeliverableRow, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	switch scope.Role {
	case models.RoleSuperAdmin:
	case models.RoleAdmin:
		where = append(where, "EXISTS (SELECT 1 FROM project_admins pa WHERE pa.projectId = d.projectId AND pa.userId = ?)")
		args = append(args, scope.UserID)
	default:
		where = append(where, "d.assignedTo = ?")
		args = append(args, scope.UserID)
	}
	if filter.ProjectID != "" {
		where = append(where, "d.projectId = ?")
		args = append(args, filter.ProjectID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		where = append(where, "(d.name LIKE ? ESCAPE '!' OR p.name LIKE ? ESCAPE '!')")
		args = append(args, like, like)
	}

	query := deliverableListSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows := make([]models.DeliverableRow, 0)
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch deliverables", "")
	}

	out := rows[:0]
	for _, row := range rows {
		row.Status = s.Status(row.Deadline, row.UploadedAt)
		row.AssignedTo = assigneeDisplayName(row.AssignedToFirstName, row.AssignedToLastName)
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func assigneeDisplayName(first, last *string) string {
	if first == nil || *first == "" {
		return "Unassigned"
	}
	name := *first
	if last != nil && *last != "" {
		name += " " + *last
	}
	return name
}

// Get loads one deliverable.
func (s *DeliverableService) Get(ctx context.Context, id string) (*models.Deliverable, error) {
	var d models.Deliverable
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Deliverable not found")
	}
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to load deliverable", "")
	}
	return &d, nil
}

// Create inserts a deliverable with its derived status. Unknown projects or
// assignees are rejected by the foreign keys.
func (s *DeliverableService) Create(ctx context.Context, in CreateDeliverableInput) (*models.Deliverable, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Format = NormalizeFormat(in.Format)
	if in.Name == "" || in.ProjectID == "" || in.Format == "" {
		return nil, apperrors.Validation("Missing required fields")
	}

	var assignedTo *string
	if v := strings.TrimSpace(in.AssignedTo); v != "" {
		assignedTo = &v
	}

	d := &models.Deliverable{
		ID:         newID(),
		Name:       in.Name,
		ProjectID:  in.ProjectID,
		Format:     in.Format,
		Deadline:   in.Deadline,
		AssignedTo: assignedTo,
		Status:     s.Status(in.Deadline, nil),
		CreatedAt:  s.clock.now(),
	}

	err := s.db.WithContext(ctx).Exec(
		"INSERT INTO deliverables (id, name, projectId, format, deadline, assignedTo, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.ProjectID, d.Format, d.Deadline, d.AssignedTo, string(d.Status),
	).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to create deliverable", "Deliverable already exists")
	}
	return d, nil
}

// Update applies a PUT. A received status stamps uploadedAt (keeping an
// earlier stamp); any other status clears the upload fields. The stored
// status is then re-derived from deadline and uploadedAt.
func (s *DeliverableService) Update(ctx context.Context, id string, in UpdateDeliverableInput) (*models.Deliverable, error) {
	in.Name = strings.TrimSpace(in.Name)
	requested := models.DeliverableStatus(strings.TrimSpace(in.Status))
	if in.Name == "" || requested == "" {
		return nil, apperrors.Validation("Missing required fields")
	}
	if !requested.Valid() {
		return nil, apperrors.Validation("Invalid deliverable status")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = in.Name
	if requested.Received() {
		if current.UploadedAt == nil {
			now := s.clock.now()
			current.UploadedAt = &now
		}
		current.UploadedBy = optionalString(in.UploadedBy)
		current.FileSize = optionalString(in.FileSize)
	} else {
		current.UploadedAt = nil
		current.UploadedBy = nil
		current.FileSize = nil
	}
	current.Status = s.Status(current.Deadline, current.UploadedAt)

	res := s.db.WithContext(ctx).Exec(
		"UPDATE deliverables SET name = ?, status = ?, uploadedBy = ?, uploadedAt = ?, fileSize = ? WHERE id = ?",
		current.Name, string(current.Status), current.UploadedBy, current.UploadedAt, current.FileSize, id,
	)
	if res.Error != nil {
		return nil, apperrors.FromDB(res.Error, "Failed to update deliverable", "")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("Deliverable not found")
	}
	return current, nil
}

// RecordUpload stores the file metadata of an upload and derives the status
// from the upload time.
func (s *DeliverableService) RecordUpload(ctx context.Context, id string, rec UploadRecord) (*models.Deliverable, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	current.UploadedAt = &now
	current.UploadedBy = optionalString(rec.UploadedBy)
	current.FileSize = optionalString(rec.FileSize)
	current.FilePath = optionalString(rec.FilePath)
	current.Status = s.Status(current.Deadline, current.UploadedAt)

	res := s.db.WithContext(ctx).Exec(
		"UPDATE deliverables SET status = ?, uploadedBy = ?, uploadedAt = ?, fileSize = ?, filePath = ? WHERE id = ?",
		string(current.Status), current.UploadedBy, current.UploadedAt, current.FileSize, current.FilePath, id,
	)
	if res.Error != nil {
		return nil, apperrors.FromDB(res.Error, "Failed to record upload", "")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("Deliverable not found")
	}
	return current, nil
}

// Delete removes the deliverable and returns the storage key of its file, if
// any, so the caller can remove the bytes. Unknown ids are a no-op.
func (s *DeliverableService) Delete(ctx context.Context, id string) (string, error) {
	var filePath string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paths []string
		if err := tx.Model(&models.Deliverable{}).Where("id = ? AND filePath IS NOT NULL", id).Pluck("filePath", &paths).Error; err != nil {
			return err
		}
		if len(paths) > 0 {
			filePath = paths[0]
		}
		return tx.Exec("DELETE FROM deliverables WHERE id = ?", id).Error
	})
	if err != nil {
		return "", apperrors.FromDB(err, "Failed to delete deliverable", "")
	}
	return filePath, nil
}

// StatusCounts returns how many deliverables visible to scope are in each
// derived status.
func (s *DeliverableService) StatusCounts(ctx context.Context, scope Scope) (map[models.DeliverableStatus]int, error) {
	rows, err := s.List(ctx, scope, DeliverableFilter{})
	if err != nil {
		return nil, err
	}
	counts := map[models.DeliverableStatus]int{
		models.DeliverablePending:        0,
		models.DeliverableUpcoming:       0,
		models.DeliverableReceivedOnTime: 0,
		models.DeliverableLate:           0,
	}
	for _, row := range rows {
		counts[row.Status]++
	}
	return counts, nil
}

// RefreshStatuses re-derives the stored status of every deliverable without an
// upload and writes back the ones that changed. It returns how many changed.
func (s *DeliverableService) RefreshStatuses(ctx context.Context) (int, error) {
	var rows []struct {
		ID       string                   `gorm:"column:id"`
		Deadline *time.Time               `gorm:"column:deadline"`
		Status   models.DeliverableStatus `gorm:"column:status"`
	}
	if err := s.db.WithContext(ctx).Raw("SELECT id, deadline, status FROM deliverables WHERE uploadedAt IS NULL").Scan(&rows).Error; err != nil {
		return 0, apperrors.FromDB(err, "Failed to load outstanding deliverables", "")
	}

	changed := 0
	for _, row := range rows {
		next := s.Status(row.Deadline, nil)
		if next == row.Status {
			continue
		}
		if err := s.db.WithContext(ctx).Exec(
			"UPDATE deliverables SET status = ? WHERE id = ? AND uploadedAt IS NULL",
			string(next), row.ID,
		).Error; err != nil {
			return changed, apperrors.FromDB(err, "Failed to refresh deliverable status", "")
		}
		changed++
	}
	return changed, nil
}

// DueForReminder lists outstanding, assigned deliverables whose deadline falls
// within window and that have not been reminded yet.
func (s *DeliverableService) DueForReminder(ctx context.Context, window time.Duration) ([]models.Deliverable, error) {
	now := s.clock.now()
	due := make([]models.Deliverable, 0)
	err := s.db.WithContext(ctx).
		Where("uploadedAt IS NULL AND remindedAt IS NULL AND assignedTo IS NOT NULL AND deadline > ? AND deadline <= ?", now, now.Add(window)).
		Find(&due).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to load due deliverables", "")
	}
	return due, nil
}

// MarkReminded stamps remindedAt so the reminder is sent once.
func (s *DeliverableService) MarkReminded(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Exec("UPDATE deliverables SET remindedAt = ? WHERE id = ?", s.clock.now(), id).Error; err != nil {
		return apperrors.FromDB(err, "Failed to mark deliverable reminded", "")
	}
	return nil
}

// NormalizeFormat lower-cases a file extension and strips the leading dot.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
