package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Hội viên
type Member struct {
	UserID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentStatus    PaymentStatus   `gorm:"size:10;default:'unpaid'" json:"payment_status"`
	JoinDate         *datatypes.Date `json:"join_date"`
	CancellationDate *datatypes.Date `json:"cancellation_date"`
}

func (*Member) ProfileRole() UserRole { return RoleMember }

// BeforeSave điền join_date lần đầu hội viên chuyển sang "paid".
func (m *Member) BeforeSave(tx *gorm.DB) error {
	if m.PaymentStatus == "" {
		m.PaymentStatus = PaymentStatusUnpaid
	}
	if m.JoinDate == nil && m.PaymentStatus == PaymentStatusPaid {
		today := Today()
		m.JoinDate = &today
	}
	return nil
}

// Today returns the current UTC calendar date.
func Today() datatypes.Date {
	now := time.Now().UTC()
	return datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}
