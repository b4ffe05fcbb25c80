package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovery-api/apperrors"
	"discovery-api/models"
)

var deliverableColumns = []string{
	"id", "name", "projectId", "format", "deadline", "assignedTo", "status",
	"uploadedBy", "uploadedAt", "fileSize", "filePath", "remindedAt", "createdAt",
}

func newTestDeliverableService(t *testing.T) (*DeliverableService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	svc := NewDeliverableService(db, 0)
	svc.clock = fixedClock
	return svc, mock
}

func TestDeliverableServiceCreateDerivesStatus(t *testing.T) {
	svc, mock := newTestDeliverableService(t)
	deadline := fixedNow.Add(72 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deliverables (id, name, projectId, format, deadline, assignedTo, status) VALUES (?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "Site plan", "p1", "pdf", sqlmock.AnyArg(), sqlmock.AnyArg(), "upcoming").
		WillReturnResult(sqlmock.NewResult(0, 1))

	d, err := svc.Create(context.Background(), CreateDeliverableInput{
		Name:       "Site plan",
		ProjectID:  "p1",
		Format:     " pdf ",
		Deadline:   &deadline,
		AssignedTo: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliverableUpcoming, d.Status)
	assert.Equal(t, "pdf", d.Format)
	require.NotNil(t, d.AssignedTo)
	assert.Equal(t, "u1", *d.AssignedTo)
}

func TestDeliverableServiceCreateUnknownProject(t *testing.T) {
	svc, mock := newTestDeliverableService(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deliverables")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	_, err := svc.Create(context.Background(), CreateDeliverableInput{Name: "Site plan", ProjectID: "ghost", Format: "pdf"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeliverableServiceCreateMissingFields(t *testing.T) {
	svc, _ := newTestDeliverableService(t)

	_, err := svc.Create(context.Background(), CreateDeliverableInput{Name: "Site plan", Format: "pdf"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "Missing required fields", apperrors.Message(err, ""))
}

func TestDeliverableServiceUpdateMarksReceived(t *testing.T) {
	svc, mock := newTestDeliverableService(t)
	deadline := fixedNow.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `deliverables` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(deliverableColumns).
			AddRow("d1", "Site plan", "p1", "PDF", deadline, "u1", "late", nil, nil, nil, nil, nil, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE deliverables SET name = ?, status = ?, uploadedBy = ?, uploadedAt = ?, fileSize = ? WHERE id = ?")).
		WithArgs("Site plan v2", "late", "Ada", sqlmock.AnyArg(), "2.4 MB", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	d, err := svc.Update(context.Background(), "d1", UpdateDeliverableInput{
		Name:       "Site plan v2",
		Status:     "received_ontime",
		UploadedBy: "Ada",
		FileSize:   "2.4 MB",
	})
	require.NoError(t, err)
	require.NotNil(t, d.UploadedAt)
	assert.Equal(t, fixedNow, *d.UploadedAt)
	assert.Equal(t, models.DeliverableLate, d.Status)
}

func TestDeliverableServiceUpdateClearsUpload(t *testing.T) {
	svc, mock := newTestDeliverableService(t)
	deadline := fixedNow.Add(24 * time.Hour)
	uploaded := fixedNow.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `deliverables` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(deliverableColumns).
			AddRow("d1", "Site plan", "p1", "PDF", deadline, nil, "received_ontime", "Ada", uploaded, "1 MB", nil, nil, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE deliverables SET")).
		WithArgs("Site plan", "upcoming", nil, nil, nil, "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	d, err := svc.Update(context.Background(), "d1", UpdateDeliverableInput{Name: "Site plan", Status: "pending"})
	require.NoError(t, err)
	assert.Nil(t, d.UploadedAt)
	assert.Nil(t, d.UploadedBy)
	assert.Equal(t, models.DeliverableUpcoming, d.Status)
}

func TestDeliverableServiceUpdateUnknownID(t *testing.T) {
	svc, mock := newTestDeliverableService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `deliverables` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(deliverableColumns))

	_, err := svc.Update(context.Background(), "missing", UpdateDeliverableInput{Name: "x", Status: "pending"})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "Deliverable not found", apperrors.Message(err, ""))
}

func TestDeliverableServiceListDerivesAndFilters(t *testing.T) {
	svc, mock := newTestDeliverableService(t)
	past := fixedNow.Add(-48 * time.Hour)
	future := fixedNow.Add(48 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "name", "projectId", "format", "deadline", "assignedTo", "status",
		"uploadedBy", "uploadedAt", "fileSize", "hasFile", "createdAt",
		"project", "assignedToFirstName", "assignedToLastName",
	}).
		AddRow("d1", "Report", "p1", "PDF", past, "u1", "pending", nil, nil, nil, false, fixedNow, "Atlas", "Ada", "Lovelace").
		AddRow("d2", "Model", "p1", "DWG", future, nil, "pending", nil, nil, nil, false, fixedNow, "Atlas", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.projectId = ? AND (d.name LIKE ? ESCAPE '!' OR p.name LIKE ? ESCAPE '!')")).
		WithArgs("p1", "%Atl%", "%Atl%").
		WillReturnRows(rows)

	got, err := svc.List(context.Background(),
		Scope{UserID: "root", Role: models.RoleSuperAdmin},
		DeliverableFilter{ProjectID: "p1", Search: "Atl", Status: models.DeliverableLate},
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
	assert.Equal(t, models.DeliverableLate, got[0].Status)
	assert.Equal(t, "Ada Lovelace", got[0].AssignedTo)
}

func TestDeliverableServiceListSearchMatchesWildcardsLiterally(t *testing.T) {
	svc, mock := newTestDeliverableService(t)

	mock.ExpectQuery(regexp.QuoteMeta("(d.name LIKE ? ESCAPE '!' OR p.name LIKE ? ESCAPE '!')")).
		WithArgs(`%50!% of plan!_v2!!%`, `%50!% of plan!_v2!!%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.List(context.Background(),
		Scope{UserID: "root", Role: models.RoleSuperAdmin},
		DeliverableFilter{Search: " 50% of plan_v2! "},
	)
	require.NoError(t, err)
}

func TestDeliverableServiceListScopesClients(t *testing.T) {
	svc, mock := newTestDeliverableService(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.assignedTo = ?")).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := svc.List(context.Background(), Scope{UserID: "u9", Role: models.RoleUser}, DeliverableFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeliverableServiceDeleteReturnsFilePath(t *testing.T) {
	svc, mock := newTestDeliverableService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `filePath` FROM `deliverables` WHERE id = ? AND filePath IS NOT NULL")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"filePath"}).AddRow("deliverables/d1/plan.pdf"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM deliverables WHERE id = ?")).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	path, err := svc.Delete(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "deliverables/d1/plan.pdf", path)
}

func TestDeliverableServiceRefreshStatuses(t *testing.T) {
	svc, mock := newTestDeliverableService(t)
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM deliverables").
		WillReturnRows(sqlmock.NewRows([]string{"id", "deadline", "status"}).
			AddRow("d1", past, "upcoming").
			AddRow("d2", future, "upcoming"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE deliverables SET status = ? WHERE id = ?")).
		WithArgs("late", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := svc.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeFormat(" PDF"))
	assert.Equal(t, "dwg", NormalizeFormat(".dwg"))
}
