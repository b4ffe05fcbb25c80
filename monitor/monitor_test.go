package monitor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogsRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logPath := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, os.WriteFile(logPath, []byte("line one\nline two\n"), 0o644))

	r := gin.New()
	Register(r, "s3cret", logPath)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?token=wrong", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?token=s3cret", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "line two")
}

func TestRegisterWithoutTokenMountsNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, "", "unused.log")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitor", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 100)+"END"), 0o644))

	got, err := tail(path, 3)
	require.NoError(t, err)
	assert.Equal(t, "END", string(got))
}
