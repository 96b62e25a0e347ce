package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

// Step is the fixed bucket length; it does not follow calendar boundaries.
func (p PeriodType) Step() time.Duration {
	switch p {
	case PeriodWeekly:
		return 7 * 24 * time.Hour
	case PeriodYearly:
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// Statistic là ảnh chụp số liệu đã tính sẵn, không phải nguồn chính xác.
type Statistic struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PeriodType       PeriodType     `gorm:"size:20;not null;index" json:"period_type"`
	PeriodStart      datatypes.Date `gorm:"not null" json:"period_start"`
	PeriodEnd        datatypes.Date `gorm:"not null" json:"period_end"`
	MemberCount      int64          `gorm:"default:0" json:"member_count"`
	NewMembers       int64          `gorm:"default:0" json:"new_members"`
	CancelledMembers int64          `gorm:"default:0" json:"cancelled_members"`
	TotalRevenue     float64        `gorm:"type:decimal(12,2);default:0" json:"total_revenue"`
	ClassID          *uuid.UUID     `gorm:"type:uuid;index" json:"class_id"`
	EnrollmentCount  int64          `gorm:"default:0" json:"enrollment_count"`
	AttendanceRate   float64        `gorm:"default:0" json:"attendance_rate"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Class *Class `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Statistic) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
