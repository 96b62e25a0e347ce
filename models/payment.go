package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	MethodMomo   PaymentMethod = "momo"
	MethodVNPay  PaymentMethod = "vnpay"
	MethodStripe PaymentMethod = "stripe"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodMomo, MethodVNPay, MethodStripe:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
	TransactionPending TransactionStatus = "pending"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionSuccess, TransactionFailed, TransactionPending:
		return true
	}
	return false
}

type Payment struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	MemberID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"member"`
	Amount        float64           `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod PaymentMethod     `gorm:"size:10;not null" json:"payment_method"`
	Status        TransactionStatus `gorm:"size:10;not null;index" json:"status"`
	TransactionID string            `gorm:"size:50;uniqueIndex;not null" json:"transaction_id"`
	DatePaid      time.Time         `gorm:"autoCreateTime;index" json:"date_paid"`

	Member *User `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.TransactionID == "" {
		p.TransactionID = uuid.NewString()
	}
	return nil
}
