package models

import (
	"time"

	"github.com/google/uuid"
)

// Lịch tư vấn riêng giữa hội viên và huấn luyện viên
type Appointment struct {
	BaseModel
	MemberID  uuid.UUID `gorm:"type:uuid;not null;index" json:"member"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer"`
	DateTime  time.Time `gorm:"not null" json:"date_time"`

	Member  *User `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	Trainer *User `gorm:"foreignKey:TrainerID;constraint:OnDelete:CASCADE" json:"-"`
}
