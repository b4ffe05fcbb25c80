package models

import "time"

type NotificationType string

const (
	NotificationDeadline NotificationType = "deadline"
	NotificationUpload   NotificationType = "upload"
	NotificationSystem   NotificationType = "system"
	NotificationUser     NotificationType = "user"
	NotificationProject  NotificationType = "project"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationDeadline, NotificationUpload, NotificationSystem, NotificationUser, NotificationProject:
		return true
	}
	return false
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

func (p NotificationPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Notification struct {
	ID            string               `gorm:"primaryKey;column:id" json:"id"`
	UserID        string               `gorm:"column:userId" json:"userId"`
	Title         string               `gorm:"column:title" json:"title"`
	Description   string               `gorm:"column:description" json:"description"`
	Type          NotificationType     `gorm:"column:type" json:"type"`
	Priority      NotificationPriority `gorm:"column:priority" json:"priority"`
	IsRead        bool                 `gorm:"column:isRead" json:"isRead"`
	ProjectID     *string              `gorm:"column:projectId" json:"projectId,omitempty"`
	RelatedUserID *string              `gorm:"column:relatedUserId" json:"relatedUserId,omitempty"`
	DeliverableID *string              `gorm:"column:deliverableId" json:"deliverableId,omitempty"`
	CreatedAt     time.Time            `gorm:"column:createdAt" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
