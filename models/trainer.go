package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Specialization string

const (
	SpecializationGym      Specialization = "gym"
	SpecializationYoga     Specialization = "yoga"
	SpecializationSwimming Specialization = "swimming"
	SpecializationDance    Specialization = "dance"
)

func (s Specialization) Valid() bool {
	switch s {
	case "", SpecializationGym, SpecializationYoga, SpecializationSwimming, SpecializationDance:
		return true
	}
	return false
}

// Huấn luyện viên
type Trainer struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Specialization  Specialization `gorm:"size:20" json:"specialization"`
	ExperienceYears *int           `json:"experience_years"`
}

func (*Trainer) ProfileRole() UserRole { return RoleTrainer }

// AfterSave giữ role của tài khoản gốc luôn là trainer.
func (t *Trainer) AfterSave(tx *gorm.DB) error {
	return tx.Model(&User{}).
		Where("id = ? AND role <> ?", t.UserID, RoleTrainer).
		UpdateColumn("role", RoleTrainer).Error
}
