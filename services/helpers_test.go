package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/sports-center-backend/config"
	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/utils"
)

// newTestDB mở một SQLite in-memory riêng cho từng test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB

	admin        *models.User
	receptionist *models.User
	trainer      *models.User
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	f := &fixture{t: t, db: db}
	f.admin = f.user(&models.User{Username: "admin", Role: models.RoleAdmin})
	f.receptionist = f.user(&models.User{
		Username:     "reception",
		Role:         models.RoleReceptionist,
		Receptionist: &models.Receptionist{WorkShift: models.ShiftMorning},
	})
	f.trainer = f.user(&models.User{
		Username: "coach",
		FullName: "Coach Minh",
		Trainer:  &models.Trainer{Specialization: models.SpecializationYoga},
	})
	return f
}

func (f *fixture) user(u *models.User) *models.User {
	f.t.Helper()
	// chuỗi đã băm sẵn để tránh chi phí bcrypt trong test
	u.Password = "$2a$10$" + "abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvwxyzABCDE"
	u.Active = true
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) member(name string) *models.User {
	return f.user(&models.User{
		Username: name,
		FullName: name,
		Member:   &models.Member{PaymentStatus: models.PaymentStatusUnpaid},
	})
}

func (f *fixture) class(name string, max int) *models.Class {
	f.t.Helper()
	cls := &models.Class{
		Name:       name,
		TrainerID:  f.trainer.ID,
		StartTime:  time.Now(),
		EndTime:    time.Now().Add(time.Hour),
		MaxMembers: max,
		Status:     models.ClassActive,
	}
	cls.Active = true
	require.NoError(f.t, f.db.Create(cls).Error)
	return cls
}

// enroll ghi thẳng bản ghi và tăng sĩ số, bỏ qua kiểm tra nghiệp vụ.
func (f *fixture) enroll(member *models.User, cls *models.Class) *models.Enrollment {
	f.t.Helper()
	e := &models.Enrollment{MemberID: member.ID, GymClassID: cls.ID, Status: models.EnrollmentApproved}
	require.NoError(f.t, f.db.Create(e).Error)
	require.NoError(f.t, f.db.Model(&models.Class{}).Where("id = ?", cls.ID).
		UpdateColumn("current_capacity", gorm.Expr("current_capacity + 1")).Error)
	return e
}

func (f *fixture) capacity(cls *models.Class) int {
	f.t.Helper()
	var c models.Class
	require.NoError(f.t, f.db.Unscoped().First(&c, "id = ?", cls.ID).Error)
	return c.CurrentCapacity
}

func memberActor(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: models.RoleMember}
}

func pageOf(page, limit int) utils.Page {
	return utils.Page{Page: page, Limit: limit}
}
