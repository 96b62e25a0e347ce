package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/utils"
)

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleTrainer      UserRole = "trainer"
	RoleReceptionist UserRole = "receptionist"
	RoleMember       UserRole = "member"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleReceptionist, RoleMember:
		return true
	}
	return false
}

// User là tài khoản gốc; Member/Trainer/Receptionist dùng chung khóa chính với User.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:150" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Phone     *string   `gorm:"size:15;uniqueIndex" json:"phone"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Avatar    string    `gorm:"type:text" json:"avatar"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_date"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_date"`

	Member       *Member       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
	Trainer      *Trainer      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"trainer,omitempty"`
	Receptionist *Receptionist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"receptionist,omitempty"`
}

// RoleProfile is the role-specific half of an account.
type RoleProfile interface {
	ProfileRole() UserRole
}

// Profile returns whichever role extension is loaded, nil for admins or when
// the extension was not preloaded.
func (u *User) Profile() RoleProfile {
	switch {
	case u.Member != nil:
		return u.Member
	case u.Trainer != nil:
		return u.Trainer
	case u.Receptionist != nil:
		return u.Receptionist
	}
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Trainer != nil {
		u.Role = RoleTrainer
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if u.Phone != nil && *u.Phone == "" {
		u.Phone = nil
	}
	if u.Password != "" && !utils.IsPasswordHashed(u.Password) {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}
