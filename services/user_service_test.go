package services

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovery-api/apperrors"
	"discovery-api/models"
)

const insertUserSQL = "INSERT INTO users (id, firstName, lastName, email, role, password, avatarColor) VALUES (?, ?, ?, ?, ?, ?, ?)"

func TestUserServiceCreate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "ada@example.com", "admin", sqlmock.AnyArg(), models.DefaultAvatarColor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Create(context.Background(), CreateUserInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      "admin",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.UserActive, user.Status)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, CheckPasswordHash("secret123", user.Password))
}

func TestUserServiceCreateDefaultsRole(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs(sqlmock.AnyArg(), "Grace", "Hopper", "grace@example.com", "user", sqlmock.AnyArg(), "bg-rose-500").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Create(context.Background(), CreateUserInput{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       "grace@example.com",
		Password:    "secret123",
		AvatarColor: "bg-rose-500",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ada@example.com' for key 'email'"})

	_, err := svc.Create(context.Background(), CreateUserInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, "Email already exists", apperrors.Message(err, ""))
}

func TestUserServiceCreateRejectsInput(t *testing.T) {
	testCases := []struct {
		name string
		in   CreateUserInput
		msg  string
	}{
		{"missing password", CreateUserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, "Missing required fields"},
		{"blank first name", CreateUserInput{FirstName: "  ", LastName: "Lovelace", Email: "ada@example.com", Password: "x"}, "Missing required fields"},
		{"unknown role", CreateUserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "x", Role: "owner"}, "Invalid role"},
		{"password over 72 bytes", CreateUserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: strings.Repeat("x", 73)}, "Password must be at most 72 bytes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, _ := newMockDB(t)
			svc := NewUserService(db)

			_, err := svc.Create(context.Background(), tc.in)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Equal(t, tc.msg, apperrors.Message(err, ""))
		})
	}
}

func TestUserServiceUpdateUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET firstName = ?, lastName = ?, email = ?, role = ?, status = ? WHERE id = ?")).
		WithArgs("Ada", "Lovelace", "ada@example.com", "user", "inactive", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Update(context.Background(), "missing", UpdateUserInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      "user",
		Status:    "inactive",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserServiceUpdateInvalidStatus(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewUserService(db)

	err := svc.Update(context.Background(), "u1", UpdateUserInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      "user",
		Status:    "banned",
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUserServiceDeleteIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, svc.Delete(context.Background(), "missing"))
}

func TestUserServiceList(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	rows := sqlmock.NewRows([]string{"id", "firstName", "lastName", "email", "role", "status", "avatarColor", "createdAt"}).
		AddRow("u1", "Ada", "Lovelace", "ada@example.com", "super_admin", "active", "bg-indigo-600", fixedNow).
		AddRow("u2", "Grace", "Hopper", "grace@example.com", "user", "inactive", "bg-rose-500", fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users")).WillReturnRows(rows)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleSuperAdmin, users[0].Role)
	assert.Equal(t, models.UserInactive, users[1].Status)
	assert.Empty(t, users[0].Password)
}

func TestUserServiceUpdatePasswordRejectsOverlongPassword(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewUserService(db)

	err := svc.UpdatePassword(context.Background(), "u1", strings.Repeat("x", 73))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
