package models

import "time"

type DeliverableStatus string

const (
	DeliverablePending        DeliverableStatus = "pending"
	DeliverableReceivedOnTime DeliverableStatus = "received_ontime"
	DeliverableLate           DeliverableStatus = "late"
	DeliverableUpcoming       DeliverableStatus = "upcoming"
)

func (s DeliverableStatus) Valid() bool {
	switch s {
	case DeliverablePending, DeliverableReceivedOnTime, DeliverableLate, DeliverableUpcoming:
		return true
	}
	return false
}

// Received reports whether the status marks a delivered file.
func (s DeliverableStatus) Received() bool {
	return s == DeliverableReceivedOnTime || s == DeliverableLate
}

// Deliverable represents the deliverables table
type Deliverable struct {
	ID         string            `gorm:"primaryKey;column:id" json:"id"`
	Name       string            `gorm:"column:name" json:"name"`
	ProjectID  string            `gorm:"column:projectId" json:"projectId"`
	Format     string            `gorm:"column:format" json:"format"`
	Deadline   *time.Time        `gorm:"column:deadline" json:"deadline"`
	AssignedTo *string           `gorm:"column:assignedTo" json:"assignedTo"`
	Status     DeliverableStatus `gorm:"column:status" json:"status"`
	UploadedBy *string           `gorm:"column:uploadedBy" json:"uploadedBy"`
	UploadedAt *time.Time        `gorm:"column:uploadedAt" json:"uploadedAt"`
	FileSize   *string           `gorm:"column:fileSize" json:"fileSize"`
	FilePath   *string           `gorm:"column:filePath" json:"-"`
	RemindedAt *time.Time        `gorm:"column:remindedAt" json:"-"`
	CreatedAt  time.Time         `gorm:"column:createdAt" json:"createdAt"`
}

// TableName overrides the table name for Deliverable
func (Deliverable) TableName() string {
	return "deliverables"
}

// DeliverableRow is the joined list projection. AssignedTo is replaced by a
// display name before it is returned to clients.
type DeliverableRow struct {
	ID                  string            `gorm:"column:id" json:"id"`
	Name                string            `gorm:"column:name" json:"name"`
	ProjectID           string            `gorm:"column:projectId" json:"projectId"`
	Project             *string           `gorm:"column:project" json:"project"`
	Format              string            `gorm:"column:format" json:"format"`
	Deadline            *time.Time        `gorm:"column:deadline" json:"deadline"`
	AssignedToID        *string           `gorm:"column:assignedTo" json:"assignedToId"`
	AssignedTo          string            `gorm:"-" json:"assignedTo"`
	AssignedToFirstName *string           `gorm:"column:assignedToFirstName" json:"-"`
	AssignedToLastName  *string           `gorm:"column:assignedToLastName" json:"-"`
	Status              DeliverableStatus `gorm:"column:status" json:"status"`
	UploadedBy          *string           `gorm:"column:uploadedBy" json:"uploadedBy"`
	UploadedAt          *time.Time        `gorm:"column:uploadedAt" json:"uploadedAt"`
	FileSize            *string           `gorm:"column:fileSize" json:"fileSize"`
	HasFile             bool              `gorm:"column:hasFile" json:"hasFile"`
	CreatedAt           time.Time         `gorm:"column:createdAt" json:"createdAt"`
}
