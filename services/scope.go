package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
)

// Actor là người gọi API đã xác thực.
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (a Actor) Is(roles ...models.UserRole) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) IsStaff() bool {
	return a.Is(models.RoleAdmin, models.RoleReceptionist, models.RoleTrainer)
}

type Resource string

const (
	ResourceEnrollment   Resource = "enrollments"
	ResourceProgress     Resource = "progresses"
	ResourceAppointment  Resource = "appointments"
	ResourcePayment      Resource = "payments"
	ResourceNotification Resource = "notifications"
	ResourceInternalNews Resource = "internal_news"
)

func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func all(db *gorm.DB) *gorm.DB {
	return db
}

func column(res Resource, col string) string {
	return string(res) + "." + col
}

// Scope là nơi duy nhất quyết định một vai trò được thấy bản ghi nào của resource.
func Scope(actor Actor, res Resource) func(*gorm.DB) *gorm.DB {
	own := func(col string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column(res, col)+" = ?", actor.UserID)
		}
	}

	switch res {
	case ResourceEnrollment:
		switch actor.Role {
		case models.RoleMember:
			return own("member_id")
		case models.RoleReceptionist:
			return all
		}
		return none

	case ResourceProgress, ResourceAppointment:
		switch actor.Role {
		case models.RoleMember:
			return own("member_id")
		case models.RoleTrainer:
			return own("trainer_id")
		case models.RoleAdmin, models.RoleReceptionist:
			return all
		}
		return none

	case ResourcePayment, ResourceNotification:
		switch actor.Role {
		case models.RoleMember:
			return own("member_id")
		case models.RoleAdmin, models.RoleReceptionist:
			return all
		}
		return none

	case ResourceInternalNews:
		if actor.IsStaff() {
			return all
		}
		return none
	}
	return none
}
