package models

import "github.com/google/uuid"

// Tiến độ tập luyện
type Progress struct {
	BaseModel
	MemberID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"member"`
	TrainerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"trainer"`
	GymClassID   *uuid.UUID `gorm:"type:uuid" json:"gym_class"`
	ProgressNote string     `gorm:"type:text;not null" json:"progress_note"`

	Member   *User  `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	Trainer  *User  `gorm:"foreignKey:TrainerID;constraint:OnDelete:CASCADE" json:"-"`
	GymClass *Class `gorm:"foreignKey:GymClassID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Progress) TableName() string {
	return "progresses"
}
