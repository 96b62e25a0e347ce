package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassStatus string

const (
	ClassActive    ClassStatus = "active"
	ClassCancelled ClassStatus = "cancelled"
	ClassCompleted ClassStatus = "completed"
)

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassActive, ClassCancelled, ClassCompleted:
		return true
	}
	return false
}

// Class là một lớp học; deleted_at khác null nghĩa là đã bị xóa mềm.
type Class struct {
	BaseModel
	Name            string         `gorm:"size:100;not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	TrainerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"trainer"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	CurrentCapacity int            `gorm:"not null;default:0;check:current_capacity >= 0" json:"current_capacity"`
	MaxMembers      int            `gorm:"not null" json:"max_members"`
	Status          ClassStatus    `gorm:"size:20;default:'active'" json:"status"`
	Price           float64        `gorm:"type:decimal(10,2)" json:"price"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Trainer *User `gorm:"foreignKey:TrainerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Class) TableName() string {
	return "classes"
}

// IsFull reports whether no seat is left.
func (c *Class) IsFull() bool {
	return c.CurrentCapacity >= c.MaxMembers
}
