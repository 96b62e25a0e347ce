package models

import "github.com/google/uuid"

const EnrollmentApproved = "approved"

// Đăng ký lớp học; mỗi cặp (member, class) chỉ có một bản ghi.
type Enrollment struct {
	BaseModel
	MemberID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_member_class" json:"member"`
	GymClassID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_member_class;index" json:"gym_class"`
	Status     string    `gorm:"size:10;default:'approved'" json:"status"`

	Member   *User  `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member_detail,omitempty"`
	GymClass *Class `gorm:"foreignKey:GymClassID;constraint:OnDelete:CASCADE" json:"class_detail,omitempty"`
}
