package services

import (
	"time"

	"github.com/google/uuid"

	"discovery-api/models"
)

// Scope identifies the caller so list queries only return what the role may see.
type Scope struct {
	UserID string
	Role   models.Role
}

func (s Scope) IsSuperAdmin() bool { return s.Role == models.RoleSuperAdmin }

// newID returns a random UUID v4. Collisions are not re-checked.
func newID() string {
	return uuid.NewString()
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
