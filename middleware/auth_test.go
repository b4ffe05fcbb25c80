package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovery-api/models"
	"discovery-api/services"
)

type stubUsers map[string]*models.User

func (s stubUsers) Get(_ context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newAuthRouter(tokens TokenParser, users UserLookup, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens, users)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentUserID(c), "role": string(CurrentRole(c))})
	})
	r.GET("/private", handlers...)
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := services.NewTokenIssuer("secret", 1)
	users := stubUsers{
		"u1": {ID: "u1", Role: models.RoleAdmin, Status: models.UserActive},
		"u2": {ID: "u2", Role: models.RoleUser, Status: models.UserInactive},
	}
	r := newAuthRouter(issuer, users)

	valid, err := issuer.Issue(models.User{ID: "u1", Email: "a@b.co", Role: models.RoleUser})
	require.NoError(t, err)
	inactive, err := issuer.Issue(models.User{ID: "u2", Email: "c@d.co", Role: models.RoleUser})
	require.NoError(t, err)
	ghost, err := issuer.Issue(models.User{ID: "u9", Email: "e@f.co", Role: models.RoleUser})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", valid, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"deleted user", "Bearer " + ghost, http.StatusUnauthorized},
		{"inactive user", "Bearer " + inactive, http.StatusForbidden},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, tc.header)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := doGet(r, "Bearer "+valid)
	assert.JSONEq(t, `{"userId":"u1","role":"admin"}`, w.Body.String(), "stored role overrides the token claim")
}

func TestRequireCapability(t *testing.T) {
	issuer := services.NewTokenIssuer("secret", 1)
	r := newAuthRouter(issuer, nil, RequireCapability(CapManageProjects))

	admin, _ := issuer.Issue(models.User{ID: "a", Role: models.RoleAdmin})
	client, _ := issuer.Issue(models.User{ID: "c", Role: models.RoleUser})

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer "+client).Code)
}

func TestRequireRole(t *testing.T) {
	issuer := services.NewTokenIssuer("secret", 1)
	r := newAuthRouter(issuer, nil, RequireRole(models.RoleSuperAdmin))

	root, _ := issuer.Issue(models.User{ID: "s", Role: models.RoleSuperAdmin})
	admin, _ := issuer.Issue(models.User{ID: "a", Role: models.RoleAdmin})

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+root).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer "+admin).Code)
}

func TestCapabilities(t *testing.T) {
	assert.True(t, HasCapability(models.RoleSuperAdmin, CapManageUsers))
	assert.False(t, HasCapability(models.RoleAdmin, CapManageUsers))
	assert.True(t, HasCapability(models.RoleAdmin, CapViewUsers))
	assert.Equal(t, []Capability{CapUploadDeliverables}, Capabilities(models.RoleUser))
	assert.Empty(t, Capabilities(models.Role("guest")))
}
