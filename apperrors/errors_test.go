package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromDBMapsDriverErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "duplicate entry",
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'email'"},
			wantKind:   KindConflict,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Email already exists",
		},
		{
			name:       "translated duplicate",
			err:        fmt.Errorf("insert user: %w", gorm.ErrDuplicatedKey),
			wantKind:   KindConflict,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Email already exists",
		},
		{
			name:       "missing foreign row",
			err:        &mysql.MySQLError{Number: 1452},
			wantKind:   KindValidation,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Referenced record does not exist",
		},
		{
			name:       "record not found",
			err:        gorm.ErrRecordNotFound,
			wantKind:   KindNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Record not found",
		},
		{
			name:       "anything else",
			err:        errors.New("connection refused"),
			wantKind:   KindInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to create user",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromDB(tc.err, "Failed to create user", "Email already exists")
			assert.Equal(t, tc.wantKind, KindOf(got))
			assert.Equal(t, tc.wantStatus, Status(got))
			assert.Equal(t, tc.wantMsg, Message(got, "fallback"))
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestFromDBKeepsDomainErrors(t *testing.T) {
	orig := NotFound("Project not found")
	got := FromDB(fmt.Errorf("wrapped: %w", orig), "x", "y")
	assert.Same(t, orig, got)
}

func TestForeignErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, Status(err))
	assert.Equal(t, "generic", Message(err, "generic"))
	assert.Nil(t, FromDB(nil, "x", "y"))
}
