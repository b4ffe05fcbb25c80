package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"discovery-api/models"
)

type Capability string

const (
	CapManageUsers        Capability = "manage_users"
	CapViewUsers          Capability = "view_users"
	CapManageProjects     Capability = "manage_projects"
	CapManageDeliverables Capability = "manage_deliverables"
	CapUploadDeliverables Capability = "upload_deliverables"
	CapBroadcast          Capability = "broadcast_notifications"
)

var roleCapabilities = map[models.Role][]Capability{
	models.RoleSuperAdmin: {
		CapManageUsers, CapViewUsers, CapManageProjects,
		CapManageDeliverables, CapUploadDeliverables, CapBroadcast,
	},
	models.RoleAdmin: {CapManageProjects, CapManageDeliverables, CapUploadDeliverables, CapViewUsers},
	models.RoleUser:  {CapUploadDeliverables},
}

// Capabilities lists what role may do. Unknown roles get nothing.
func Capabilities(role models.Role) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// HasCapability reports whether role grants want.
func HasCapability(role models.Role, want Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == want {
			return true
		}
	}
	return false
}

// RequireCapability aborts with 403 unless the caller's role grants want.
func RequireCapability(want Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasCapability(CurrentRole(c), want) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
