package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// ParseRole rejects anything outside the three known roles.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.TrimSpace(raw)); r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// DefaultAvatarColor is the Tailwind class assigned when none is supplied.
const DefaultAvatarColor = "bg-indigo-600"

type User struct {
	ID          string     `gorm:"primaryKey;column:id" json:"id"`
	FirstName   string     `gorm:"column:firstName" json:"firstName"`
	LastName    string     `gorm:"column:lastName" json:"lastName"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Role        Role       `gorm:"column:role" json:"role"`
	Password    string     `gorm:"column:password" json:"-"`
	AvatarColor string     `gorm:"column:avatarColor" json:"avatarColor"`
	Status      UserStatus `gorm:"column:status" json:"status"`
	CreatedAt   time.Time  `gorm:"column:createdAt" json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName is "First Last".
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserToken stores hashed one-time tokens (password reset).
type UserToken struct {
	ID        string    `gorm:"primaryKey;column:id"`
	UserID    string    `gorm:"column:userId"`
	TokenType string    `gorm:"column:tokenType"`
	TokenHash string    `gorm:"column:tokenHash"`
	ExpiresAt time.Time `gorm:"column:expiresAt"`
	IsRevoked bool      `gorm:"column:isRevoked"`
	CreatedAt time.Time `gorm:"column:createdAt"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

const TokenTypePasswordReset = "password_reset"
