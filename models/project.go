package models

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectPaused:
		return true
	}
	return false
}

// Project represents the projects table
type Project struct {
	ID           string        `gorm:"primaryKey;column:id" json:"id"`
	Name         string        `gorm:"column:name" json:"name"`
	Description  string        `gorm:"column:description" json:"description"`
	Sector       string        `gorm:"column:sector" json:"sector"`
	DeliveryDate *time.Time    `gorm:"column:deliveryDate" json:"deliveryDate"`
	Status       ProjectStatus `gorm:"column:status" json:"status"`
	CreatedAt    time.Time     `gorm:"column:createdAt" json:"createdAt"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectSummary is a project row with the counts computed by the list query.
type ProjectSummary struct {
	Project
	AdminCount          int64 `gorm:"column:adminCount" json:"adminCount"`
	DeliverablesCount   int64 `gorm:"column:deliverablesCount" json:"deliverablesCount"`
	PendingDeliverables int64 `gorm:"column:pendingDeliverables" json:"pendingDeliverables"`
}

// ProjectAdmin represents the project_admins link table
type ProjectAdmin struct {
	ProjectID string `gorm:"primaryKey;column:projectId" json:"projectId"`
	UserID    string `gorm:"primaryKey;column:userId" json:"userId"`
}

// TableName overrides the table name for ProjectAdmin
func (ProjectAdmin) TableName() string {
	return "project_admins"
}

// ProjectAdminUser is the admin projection returned with a single project.
type ProjectAdminUser struct {
	ID        string `gorm:"column:id" json:"id"`
	FirstName string `gorm:"column:firstName" json:"firstName"`
	LastName  string `gorm:"column:lastName" json:"lastName"`
	Email     string `gorm:"column:email" json:"email"`
}
