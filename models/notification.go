package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationClassSchedule NotificationType = "class_schedule"
	NotificationPromotion     NotificationType = "promotion"
	NotificationReminder      NotificationType = "reminder"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationClassSchedule, NotificationPromotion, NotificationReminder:
		return true
	}
	return false
}

type Notification struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID uuid.UUID        `gorm:"type:uuid;not null;index" json:"member"` // người nhận
	Message  string           `gorm:"type:text;not null" json:"message"`
	Type     NotificationType `gorm:"size:20;not null" json:"type"`
	IsRead   bool             `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`

	Member *User `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
