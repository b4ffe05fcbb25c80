package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"discovery-api/apperrors"
	"discovery-api/models"
)

// CreateProjectInput is the project creation payload. Admins are linked in
// the same transaction as the project insert.
type CreateProjectInput struct {
	Name         string
	Description  string
	Sector       string
	DeliveryDate *time.Time
	Admins       []string
}

// UpdateProjectInput overwrites the editable columns. A nil Admins leaves
// the links untouched; a non-nil one replaces them.
type UpdateProjectInput struct {
	Name         string
	Description  string
	Sector       string
	Status       string
	DeliveryDate *time.Time
	Admins       []string
}

// ProjectDetail is one project with its counts and linked admins.
type ProjectDetail struct {
	models.ProjectSummary
	Admins []models.ProjectAdminUser `json:"admins"`
}

// ProjectService reads and writes projects and their admin links.
type ProjectService struct {
	db      *gorm.DB
	clock   clock
	dueSoon time.Duration
}

// NewProjectService instantiates the service. dueSoon must be the window the
// deliverable service uses so pending counts match derived statuses.
func NewProjectService(db *gorm.DB, dueSoon time.Duration) *ProjectService {
	return &ProjectService{db: db, dueSoon: dueSoon}
}

const projectSummarySelect = `SELECT
  p.id, p.name, p.description, p.sector, p.deliveryDate, p.status, p.createdAt,
  (SELECT COUNT(*) FROM project_admins WHERE projectId = p.id) AS adminCount,
  (SELECT COUNT(*) FROM deliverables WHERE projectId = p.id) AS deliverablesCount,
  (SELECT COUNT(*) FROM deliverables WHERE projectId = p.id AND uploadedAt IS NULL
     AND (deadline IS NULL OR deadline BETWEEN ? AND ?)) AS pendingDeliverables
FROM projects p`

// projectScopeClause restricts projects to what the caller may see: admins
// their linked projects, clients projects holding one of their deliverables.
func projectScopeClause(scope Scope) (string, []interface{}) {
	switch scope.Role {
	case models.RoleSuperAdmin:
		return "", nil
	case models.RoleAdmin:
		return "EXISTS (SELECT 1 FROM project_admins pa WHERE pa.projectId = p.id AND pa.userId = ?)", []interface{}{scope.UserID}
	default:
		return "EXISTS (SELECT 1 FROM deliverables sd WHERE sd.projectId = p.id AND sd.assignedTo = ?)", []interface{}{scope.UserID}
	}
}

// pendingWindow bounds the deadlines DeriveDeliverableStatus classifies as
// pending for a deliverable without an upload.
func (s *ProjectService) pendingWindow() (from, to time.Time) {
	now := s.clock.now()
	return now, now.Add(s.dueSoon)
}

// List returns the projects visible to scope with computed counts.
func (s *ProjectService) List(ctx context.Context, scope Scope) ([]models.ProjectSummary, error) {
	query := projectSummarySelect
	from, to := s.pendingWindow()
	args := []interface{}{from, to}
	if clause, scopeArgs := projectScopeClause(scope); clause != "" {
		query += " WHERE " + clause
		args = append(args, scopeArgs...)
	}

	projects := make([]models.ProjectSummary, 0)
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&projects).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch projects", "")
	}
	return projects, nil
}

// Get returns one project with counts and admins.
func (s *ProjectService) Get(ctx context.Context, id string) (*ProjectDetail, error) {
	rows := make([]models.ProjectSummary, 0, 1)
	from, to := s.pendingWindow()
	err := s.db.WithContext(ctx).
		Raw(projectSummarySelect+" WHERE p.id = ?", from, to, id).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch project", "")
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Project not found")
	}

	admins := make([]models.ProjectAdminUser, 0)
	err = s.db.WithContext(ctx).Raw(
		"SELECT u.id, u.firstName, u.lastName, u.email FROM project_admins pa JOIN users u ON u.id = pa.userId WHERE pa.projectId = ?",
		id,
	).Scan(&admins).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch project admins", "")
	}

	return &ProjectDetail{ProjectSummary: rows[0], Admins: admins}, nil
}

// Create inserts the project and its admin links atomically. If any link
// fails the whole creation is rolled back and the error is returned.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, []string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, nil, apperrors.Validation("Project name is required")
	}

	project := &models.Project{
		ID:           newID(),
		Name:         in.Name,
		Description:  in.Description,
		Sector:       strings.TrimSpace(in.Sector),
		DeliveryDate: in.DeliveryDate,
		Status:       models.ProjectActive,
		CreatedAt:    s.clock.now(),
	}
	admins := uniqueIDs(in.Admins)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO projects (id, name, description, sector, deliveryDate) VALUES (?, ?, ?, ?, ?)",
			project.ID, project.Name, project.Description, project.Sector, project.DeliveryDate,
		).Error; err != nil {
			return err
		}
		return insertProjectAdmins(tx, project.ID, admins)
	})
	if err != nil {
		return nil, nil, apperrors.FromDB(err, "Failed to create project", "Project already exists")
	}
	return project, admins, nil
}

// Update overwrites the project and, when requested, replaces its admin links
// in the same transaction.
func (s *ProjectService) Update(ctx context.Context, id string, in UpdateProjectInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.Validation("Project name is required")
	}
	status := models.ProjectStatus(in.Status)
	if !status.Valid() {
		return apperrors.Validation("Invalid project status")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"UPDATE projects SET name = ?, description = ?, sector = ?, status = ?, deliveryDate = ? WHERE id = ?",
			in.Name, in.Description, strings.TrimSpace(in.Sector), string(status), in.DeliveryDate, id,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Project not found")
		}
		if in.Admins == nil {
			return nil
		}
		if err := tx.Exec("DELETE FROM project_admins WHERE projectId = ?", id).Error; err != nil {
			return err
		}
		return insertProjectAdmins(tx, id, uniqueIDs(in.Admins))
	})
	if err != nil {
		return apperrors.FromDB(err, "Failed to update project", "Project already exists")
	}
	return nil
}

// Delete removes the project. Admin links and deliverables follow through
// the foreign-key cascades; the storage keys of the cascaded deliverables are
// returned so the caller can remove the files. Unknown ids are a no-op.
func (s *ProjectService) Delete(ctx context.Context, id string) ([]string, error) {
	filePaths := make([]string, 0)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Deliverable{}).
			Where("projectId = ? AND filePath IS NOT NULL", id).
			Pluck("filePath", &filePaths).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM projects WHERE id = ?", id).Error
	})
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to delete project", "")
	}
	return filePaths, nil
}

// AdminIDs returns the users linked to a project.
func (s *ProjectService) AdminIDs(ctx context.Context, projectID string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&models.ProjectAdmin{}).
		Where("projectId = ?", projectID).
		Pluck("userId", &ids).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch project admins", "")
	}
	return ids, nil
}

// EnsureAccess returns a forbidden error unless scope may manage projectID.
// Super admins manage everything; admins only their linked projects.
func (s *ProjectService) EnsureAccess(ctx context.Context, scope Scope, projectID string) error {
	if scope.IsSuperAdmin() {
		return nil
	}
	if scope.Role != models.RoleAdmin {
		return apperrors.Forbidden("Insufficient permissions")
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ProjectAdmin{}).
		Where("projectId = ? AND userId = ?", projectID, scope.UserID).
		Count(&count).Error
	if err != nil {
		return apperrors.FromDB(err, "Failed to verify project access", "")
	}
	if count == 0 {
		return apperrors.Forbidden("You are not an admin of this project")
	}
	return nil
}

// Counts returns total and active project counts visible to scope.
func (s *ProjectService) Counts(ctx context.Context, scope Scope) (total, active int64, err error) {
	query := "SELECT COUNT(*) AS total, COALESCE(SUM(p.status = ?), 0) AS active FROM projects p"
	args := []interface{}{string(models.ProjectActive)}
	if clause, scopeArgs := projectScopeClause(scope); clause != "" {
		query += " WHERE " + clause
		args = append(args, scopeArgs...)
	}
	var row struct {
		Total  int64
		Active int64
	}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return 0, 0, apperrors.FromDB(err, "Failed to count projects", "")
	}
	return row.Total, row.Active, nil
}

func insertProjectAdmins(tx *gorm.DB, projectID string, admins []string) error {
	for _, adminID := range admins {
		if err := tx.Exec("INSERT INTO project_admins (projectId, userId) VALUES (?, ?)", projectID, adminID).Error; err != nil {
			return err
		}
	}
	return nil
}

// uniqueIDs trims, drops blanks and duplicates while keeping order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
