package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type EnrollRequest struct {
	GymClassID uuid.UUID
	MemberID   *uuid.UUID
}

type EnrollmentFilter struct {
	GymClassID *uuid.UUID
	MemberID   *uuid.UUID
}

type EnrollmentService struct {
	db *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// resolveMember: hội viên luôn đăng ký cho chính mình, lễ tân phải chỉ định hội viên.
func (s *EnrollmentService) resolveMember(ctx context.Context, actor Actor, req EnrollRequest) (uuid.UUID, error) {
	var memberID uuid.UUID
	switch actor.Role {
	case models.RoleMember:
		memberID = actor.UserID
	case models.RoleReceptionist:
		if req.MemberID == nil || *req.MemberID == uuid.Nil {
			return uuid.Nil, FieldValidation("member", "Receptionist must choose a member")
		}
		memberID = *req.MemberID
	default:
		return uuid.Nil, Forbidden("You do not have permission to create enrollments")
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("user_id = ?", memberID).Count(&n).Error; err != nil {
		return uuid.Nil, FromDB(err, "")
	}
	if n == 0 {
		return uuid.Nil, FieldValidation("member", "This user is not a member")
	}
	return memberID, nil
}

// Enroll kiểm tra trùng, kiểm tra sức chứa, tạo bản ghi và tăng current_capacity
// trong cùng một transaction. Dòng lớp học được khóa (FOR UPDATE trên postgres) và
// lệnh tăng có điều kiện current_capacity < max_members nên hai request song song
// không thể cùng vượt giới hạn.
func (s *EnrollmentService) Enroll(ctx context.Context, actor Actor, req EnrollRequest) (*models.Enrollment, error) {
	memberID, err := s.resolveMember(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		MemberID:   memberID,
		GymClassID: req.GymClassID,
		Status:     models.EnrollmentApproved,
	}
	enrollment.Active = true

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Enrollment{}).
			Where("member_id = ? AND gym_class_id = ?", memberID, req.GymClassID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateEnrollment
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var cls models.Class
		if err := q.First(&cls, "id = ?", req.GymClassID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return FieldValidation("gym_class", "Class does not exist or has been deleted")
			}
			return err
		}
		if cls.IsFull() {
			return ErrClassFull
		}

		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}

		return reserveSeat(tx, cls.ID)
	})
	if err != nil {
		if _, dup := utils.UniqueViolationField(err); dup {
			return nil, ErrDuplicateEnrollment
		}
		return nil, FromDB(err, "Class not found")
	}
	return s.Get(ctx, actor, enrollment.ID)
}

// reserveSeat tăng current_capacity chỉ khi còn chỗ, bất kể dữ liệu lớp đã đọc trước đó.
func reserveSeat(tx *gorm.DB, classID uuid.UUID) error {
	res := tx.Model(&models.Class{}).
		Where("id = ? AND current_capacity < max_members", classID).
		UpdateColumn("current_capacity", gorm.Expr("current_capacity + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClassFull
	}
	return nil
}

func (s *EnrollmentService) scoped(ctx context.Context, actor Actor) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Enrollment{}).Scopes(Scope(actor, ResourceEnrollment))
}

func (s *EnrollmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.scoped(ctx, actor).
		Preload("Member").
		Preload("GymClass", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&e, "enrollments.id = ?", id).Error
	if err != nil {
		return nil, FromDB(err, "Enrollment not found")
	}
	return &e, nil
}

// List áp phạm vi theo vai trò trước, sau đó mới tới filter query.
func (s *EnrollmentService) List(ctx context.Context, actor Actor, f EnrollmentFilter, page utils.Page) ([]models.Enrollment, int64, error) {
	q := s.scoped(ctx, actor)
	if f.GymClassID != nil {
		q = q.Where("enrollments.gym_class_id = ?", *f.GymClassID)
	}
	if f.MemberID != nil {
		q = q.Where("enrollments.member_id = ?", *f.MemberID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, FromDB(err, "")
	}
	var list []models.Enrollment
	err := q.Preload("Member").
		Preload("GymClass", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Scopes(page.Scope).
		Order("enrollments.created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, FromDB(err, "")
	}
	return list, total, nil
}

// Unenroll giảm current_capacity (không xuống dưới 0) rồi xóa bản ghi.
func (s *EnrollmentService) Unenroll(ctx context.Context, actor Actor, id uuid.UUID) error {
	var e models.Enrollment
	if err := s.scoped(ctx, actor).First(&e, "enrollments.id = ?", id).Error; err != nil {
		return FromDB(err, "Enrollment not found")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Class{}).
			Where("id = ? AND current_capacity > 0", e.GymClassID).
			UpdateColumn("current_capacity", gorm.Expr("current_capacity - ?", 1)).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Enrollment{}, "id = ?", e.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return FromDB(err, "Enrollment not found")
}

// TrainerStudents: hội viên (không trùng) có đăng ký approved vào lớp của huấn luyện viên.
func (s *EnrollmentService) TrainerStudents(ctx context.Context, trainerID uuid.UUID) ([]models.User, error) {
	memberIDs := s.db.Model(&models.Enrollment{}).
		Select("DISTINCT enrollments.member_id").
		Joins("JOIN classes ON classes.id = enrollments.gym_class_id").
		Where("classes.trainer_id = ? AND enrollments.status = ?", trainerID, models.EnrollmentApproved)

	var users []models.User
	err := s.db.WithContext(ctx).Preload("Member").
		Where("id IN (?)", memberIDs).
		Order("full_name").
		Find(&users).Error
	if err != nil {
		return nil, FromDB(err, "")
	}
	return users, nil
}
