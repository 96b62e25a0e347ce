package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/utils"
)

const classNotFound = "Class does not exist or has been deleted"

type ClassInput struct {
	Name        string
	Description string
	TrainerID   uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	MaxMembers  int
	Status      models.ClassStatus
	Price       float64
}

type ClassPatch struct {
	Name        *string
	Description *string
	TrainerID   *uuid.UUID
	StartTime   *time.Time
	EndTime     *time.Time
	MaxMembers  *int
	Status      *models.ClassStatus
	Price       *float64
}

type ClassFilter struct {
	TrainerID   *uuid.UUID
	OnlyDeleted bool
}

type ClassService struct {
	db *gorm.DB
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{db: db}
}

func (s *ClassService) checkTrainer(ctx context.Context, id uuid.UUID) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Trainer{}).Where("user_id = ?", id).Count(&n).Error; err != nil {
		return FromDB(err, "")
	}
	if n == 0 {
		return FieldValidation("trainer", "Trainer does not exist")
	}
	return nil
}

func validateSchedule(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return FieldValidation("end_time", "end_time must not be before start_time")
	}
	return nil
}

func (s *ClassService) Create(ctx context.Context, in ClassInput) (*models.Class, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, FieldValidation("name", "Class name is required")
	}
	if in.MaxMembers < 1 {
		return nil, FieldValidation("max_members", "max_members must be at least 1")
	}
	if in.Price < 0 {
		return nil, FieldValidation("price", "price must not be negative")
	}
	if in.Status == "" {
		in.Status = models.ClassActive
	}
	if !in.Status.Valid() {
		return nil, FieldValidation("status", "Invalid class status")
	}
	if err := validateSchedule(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if err := s.checkTrainer(ctx, in.TrainerID); err != nil {
		return nil, err
	}

	now := time.Now()
	if in.StartTime.IsZero() {
		in.StartTime = now
	}
	if in.EndTime.IsZero() {
		in.EndTime = in.StartTime
	}

	cls := &models.Class{
		Name:        in.Name,
		Description: in.Description,
		TrainerID:   in.TrainerID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		MaxMembers:  in.MaxMembers,
		Status:      in.Status,
		Price:       in.Price,
	}
	cls.Active = true
	if err := s.db.WithContext(ctx).Create(cls).Error; err != nil {
		return nil, FromDB(err, classNotFound)
	}
	return cls, nil
}

// Get không trả lớp đã xóa mềm.
func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	var cls models.Class
	if err := s.db.WithContext(ctx).Preload("Trainer.Trainer").First(&cls, "id = ?", id).Error; err != nil {
		return nil, FromDB(err, classNotFound)
	}
	return &cls, nil
}

func (s *ClassService) List(ctx context.Context, f ClassFilter, page utils.Page) ([]models.Class, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Class{})
	if f.OnlyDeleted {
		q = q.Unscoped().Where("deleted_at IS NOT NULL")
	}
	if f.TrainerID != nil {
		q = q.Where("trainer_id = ?", *f.TrainerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, FromDB(err, "")
	}
	var classes []models.Class
	if err := q.Preload("Trainer.Trainer").Scopes(page.Scope).Order("start_time DESC").Find(&classes).Error; err != nil {
		return nil, 0, FromDB(err, "")
	}
	return classes, total, nil
}

// Update không bao giờ động tới current_capacity.
func (s *ClassService) Update(ctx context.Context, id uuid.UUID, p ClassPatch) (*models.Class, error) {
	cls, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, FieldValidation("name", "Class name is required")
		}
		updates["name"] = name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.TrainerID != nil {
		if err := s.checkTrainer(ctx, *p.TrainerID); err != nil {
			return nil, err
		}
		updates["trainer_id"] = *p.TrainerID
	}
	start, end := cls.StartTime, cls.EndTime
	if p.StartTime != nil {
		start = *p.StartTime
		updates["start_time"] = start
	}
	if p.EndTime != nil {
		end = *p.EndTime
		updates["end_time"] = end
	}
	if err := validateSchedule(start, end); err != nil {
		return nil, err
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, FieldValidation("status", "Invalid class status")
		}
		updates["status"] = *p.Status
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, FieldValidation("price", "price must not be negative")
		}
		updates["price"] = *p.Price
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.MaxMembers != nil {
			// giữ bất biến current_capacity <= max_members kể cả khi đang có người đăng ký song song
			res := tx.Model(&models.Class{}).
				Where("id = ? AND current_capacity <= ?", id, *p.MaxMembers).
				Update("max_members", *p.MaxMembers)
			if res.Error != nil {
				return res.Error
			}
			if *p.MaxMembers < 1 || res.RowsAffected == 0 {
				return FieldValidation("max_members", "max_members must be at least 1 and not below current_capacity")
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Class{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, FromDB(err, classNotFound)
	}
	return s.Get(ctx, id)
}

// SoftDelete đánh dấu deleted_at; lớp đã xóa trước đó trả lỗi validation.
func (s *ClassService) SoftDelete(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	var cls models.Class
	if err := s.db.WithContext(ctx).Unscoped().First(&cls, "id = ?", id).Error; err != nil {
		return nil, FromDB(err, "Class not found")
	}
	if cls.DeletedAt.Valid {
		return nil, Validation("Class '" + cls.Name + "' was already deleted")
	}
	if err := s.db.WithContext(ctx).Delete(&cls).Error; err != nil {
		return nil, FromDB(err, "Class not found")
	}
	return &cls, nil
}

// Restore bỏ đánh dấu xóa mềm; quyền admin được kiểm tra ở tầng route.
func (s *ClassService) Restore(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	var cls models.Class
	if err := s.db.WithContext(ctx).Unscoped().First(&cls, "id = ?", id).Error; err != nil {
		return nil, FromDB(err, "Class not found")
	}
	if !cls.DeletedAt.Valid {
		return nil, Validation("Nothing to restore: class is not deleted")
	}
	if err := s.db.WithContext(ctx).Unscoped().Model(&cls).UpdateColumn("deleted_at", nil).Error; err != nil {
		return nil, FromDB(err, "Class not found")
	}
	return s.Get(ctx, id)
}

// EnrolledClassIDs trả về tập lớp mà hội viên đã được duyệt, dùng cho is_enrolled.
func (s *ClassService) EnrolledClassIDs(ctx context.Context, memberID uuid.UUID, classIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(classIDs))
	if len(classIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("member_id = ? AND gym_class_id IN ? AND status = ?", memberID, classIDs, models.EnrollmentApproved).
		Pluck("gym_class_id", &ids).Error
	if err != nil {
		return nil, FromDB(err, "")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// TrainerClasses: các lớp (chưa xóa) do huấn luyện viên phụ trách.
func (s *ClassService) TrainerClasses(ctx context.Context, trainerID uuid.UUID) ([]models.Class, error) {
	var classes []models.Class
	err := s.db.WithContext(ctx).Preload("Trainer.Trainer").
		Where("trainer_id = ?", trainerID).
		Order("start_time DESC").
		Find(&classes).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, FromDB(err, "")
	}
	return classes, nil
}
