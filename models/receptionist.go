package models

import "github.com/google/uuid"

type WorkShift string

const (
	ShiftMorning   WorkShift = "morning"
	ShiftAfternoon WorkShift = "afternoon"
	ShiftEvening   WorkShift = "evening"
)

func (w WorkShift) Valid() bool {
	switch w {
	case ShiftMorning, ShiftAfternoon, ShiftEvening:
		return true
	}
	return false
}

// Nhân viên lễ tân
type Receptionist struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkShift WorkShift `gorm:"size:10;not null" json:"work_shift"`
}

func (*Receptionist) ProfileRole() UserRole { return RoleReceptionist }
