package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/utils"
)

// AccountInput gom trường chung và trường riêng theo vai trò.
type AccountInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Phone    *string
	Role     models.UserRole
	Avatar   string

	PaymentStatus    models.PaymentStatus
	JoinDate         *datatypes.Date
	CancellationDate *datatypes.Date

	Specialization  models.Specialization
	ExperienceYears *int

	WorkShift models.WorkShift
}

// AccountPatch: nil nghĩa là giữ nguyên.
type AccountPatch struct {
	Password *string
	Email    *string
	FullName *string
	Phone    *string
	Avatar   *string
	Active   *bool

	PaymentStatus    *models.PaymentStatus
	JoinDate         *datatypes.Date
	CancellationDate *datatypes.Date

	Specialization  *models.Specialization
	ExperienceYears *int

	WorkShift *models.WorkShift
}

type AccountFilter struct {
	Search     string
	NotInClass *uuid.UUID
	ActiveOnly bool
}

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func withProfiles(db *gorm.DB) *gorm.DB {
	return db.Preload("Member").Preload("Trainer").Preload("Receptionist")
}

// Create tạo tài khoản kèm bản ghi vai trò tương ứng.
func (s *AccountService) Create(ctx context.Context, in AccountInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, FieldValidation("username", "Username is required")
	}
	if len(in.Password) < 6 {
		return nil, FieldValidation("password", "Password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if !in.Role.Valid() {
		return nil, FieldValidation("role", "Invalid role")
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.TrimSpace(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Phone:    in.Phone,
		Role:     in.Role,
		Password: in.Password,
		Avatar:   in.Avatar,
		Active:   true,
	}

	switch in.Role {
	case models.RoleMember:
		status := in.PaymentStatus
		if status == "" {
			status = models.PaymentStatusUnpaid
		}
		if status != models.PaymentStatusPaid && status != models.PaymentStatusUnpaid {
			return nil, FieldValidation("payment_status", "Invalid payment status")
		}
		user.Member = &models.Member{
			PaymentStatus:    status,
			JoinDate:         in.JoinDate,
			CancellationDate: in.CancellationDate,
		}
	case models.RoleTrainer:
		if !in.Specialization.Valid() {
			return nil, FieldValidation("specialization", "Invalid specialization")
		}
		user.Trainer = &models.Trainer{
			Specialization:  in.Specialization,
			ExperienceYears: in.ExperienceYears,
		}
	case models.RoleReceptionist:
		if !in.WorkShift.Valid() {
			return nil, FieldValidation("work_shift", "Receptionist requires a valid work_shift")
		}
		user.Receptionist = &models.Receptionist{WorkShift: in.WorkShift}
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, FromDB(err, "User not found")
	}
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := withProfiles(s.db.WithContext(ctx)).First(&user, "id = ?", id).Error; err != nil {
		return nil, FromDB(err, "User not found")
	}
	return &user, nil
}

// GetWithRole trả về not found nếu tài khoản không mang vai trò role.
func (s *AccountService) GetWithRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p := user.Profile(); p == nil || p.ProfileRole() != role {
		return nil, NotFound(string(role) + " not found")
	}
	return user, nil
}

// List liệt kê tài khoản; role rỗng nghĩa là mọi vai trò.
func (s *AccountService) List(ctx context.Context, role models.UserRole, f AccountFilter, page utils.Page) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	switch role {
	case models.RoleMember:
		q = q.Joins("JOIN members ON members.user_id = users.id")
	case models.RoleTrainer:
		q = q.Joins("JOIN trainers ON trainers.user_id = users.id")
	case models.RoleReceptionist:
		q = q.Joins("JOIN receptionists ON receptionists.user_id = users.id")
	case models.RoleAdmin:
		q = q.Where("users.role = ?", models.RoleAdmin)
	}
	if f.ActiveOnly {
		q = q.Where("users.active = ?", true)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.full_name) LIKE ? OR users.phone LIKE ?",
			like, like, like, like)
	}
	if f.NotInClass != nil {
		enrolled := s.db.Model(&models.Enrollment{}).
			Select("member_id").
			Where("gym_class_id = ? AND status = ?", *f.NotInClass, models.EnrollmentApproved)
		q = q.Where("users.id NOT IN (?)", enrolled)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, FromDB(err, "")
	}
	var users []models.User
	if err := withProfiles(q).Scopes(page.Scope).Order("users.created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, FromDB(err, "")
	}
	return users, total, nil
}

// Update áp dụng patch cho tài khoản và bản ghi vai trò trong một transaction.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, p AccountPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Password != nil {
		if len(*p.Password) < 6 {
			return nil, FieldValidation("password", "Password must be at least 6 characters")
		}
		user.Password = *p.Password
	}
	if p.Email != nil {
		user.Email = strings.TrimSpace(*p.Email)
	}
	if p.FullName != nil {
		user.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		user.Phone = &phone
	}
	if p.Avatar != nil {
		user.Avatar = *p.Avatar
	}
	if p.Active != nil {
		user.Active = *p.Active
	}

	if m := user.Member; m != nil {
		if p.PaymentStatus != nil {
			if *p.PaymentStatus != models.PaymentStatusPaid && *p.PaymentStatus != models.PaymentStatusUnpaid {
				return nil, FieldValidation("payment_status", "Invalid payment status")
			}
			m.PaymentStatus = *p.PaymentStatus
		}
		if p.JoinDate != nil {
			m.JoinDate = p.JoinDate
		}
		if p.CancellationDate != nil {
			m.CancellationDate = p.CancellationDate
		}
	}
	if t := user.Trainer; t != nil {
		if p.Specialization != nil {
			if !p.Specialization.Valid() {
				return nil, FieldValidation("specialization", "Invalid specialization")
			}
			t.Specialization = *p.Specialization
		}
		if p.ExperienceYears != nil {
			t.ExperienceYears = p.ExperienceYears
		}
	}
	if r := user.Receptionist; r != nil && p.WorkShift != nil {
		if !p.WorkShift.Valid() {
			return nil, FieldValidation("work_shift", "Invalid work_shift")
		}
		r.WorkShift = *p.WorkShift
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return err
		}
		if profile := user.Profile(); profile != nil {
			if err := tx.Save(profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, FromDB(err, "User not found")
	}
	return s.Get(ctx, id)
}

func (s *AccountService) Delete(ctx context.Context, id uuid.UUID, role models.UserRole) error {
	if _, err := s.GetWithRole(ctx, id, role); err != nil {
		return err
	}
	return FromDB(s.db.WithContext(ctx).Select(clause.Associations).Delete(&models.User{ID: id}).Error, "User not found")
}

// Authenticate kiểm tra username/password cho đăng nhập.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, Validation("Invalid username or password")
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, Validation("Invalid username or password")
	}
	if !user.Active {
		return nil, Forbidden("Account is disabled")
	}
	return &user, nil
}
