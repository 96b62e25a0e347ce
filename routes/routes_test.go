package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/config"
	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.ConfigureJWT("routes-test-secret", time.Hour)

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

	mem := cache.NewMemoryCache()
	stats := services.NewStatsService(db, mem, time.Hour)
	r := SetupRouter(gin.New(), Deps{
		DB:       db,
		Cache:    mem,
		Stats:    stats,
		Snapshot: services.NewSnapshotJob(db, stats, models.PeriodMonthly),
	})
	return &testServer{t: t, db: db, router: r}
}

func (s *testServer) user(u *models.User) (*models.User, string) {
	s.t.Helper()
	if u.Password == "" {
		u.Password = "$2a$10$abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvwxyzABCDE"
	}
	u.Active = true
	require.NoError(s.t, s.db.Create(u).Error)
	token, err := utils.GenerateToken(u.ID.String(), string(u.Role))
	require.NoError(s.t, err)
	return u, token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type world struct {
	admin, desk, coach, alice, bob      *models.User
	adminT, deskT, coachT, aliceT, bobT string
}

func (s *testServer) world() world {
	var w world
	w.admin, w.adminT = s.user(&models.User{Username: "admin", Role: models.RoleAdmin})
	w.desk, w.deskT = s.user(&models.User{Username: "desk", Role: models.RoleReceptionist,
		Receptionist: &models.Receptionist{WorkShift: models.ShiftMorning}})
	w.coach, w.coachT = s.user(&models.User{Username: "coach", FullName: "Coach Lan",
		Trainer: &models.Trainer{Specialization: models.SpecializationGym}})
	w.alice, w.aliceT = s.user(&models.User{Username: "alice", Member: &models.Member{}})
	w.bob, w.bobT = s.user(&models.User{Username: "bob", Member: &models.Member{}})
	return w
}

func (s *testServer) class(trainer *models.User, max int) *models.Class {
	s.t.Helper()
	cls := &models.Class{Name: "Yoga", TrainerID: trainer.ID, MaxMembers: max, Status: models.ClassActive,
		StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	cls.Active = true
	require.NoError(s.t, s.db.Create(cls).Error)
	return cls
}

func TestPingAndHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do("GET", "/ping", "", nil).Code)

	w := s.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["db"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	_, err := services.NewAccountService(s.db).Create(context.Background(), services.AccountInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	w := s.do("POST", "/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])

	w = s.do("POST", "/auth/login", "", gin.H{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/classes", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/classes", "garbage", nil).Code)
}

func TestMemberEnrollsSelfAndSeesIsEnrolled(t *testing.T) {
	s := newTestServer(t)
	w := s.world()
	cls := s.class(w.coach, 5)

	resp := s.do("POST", "/enrollments", w.aliceT, gin.H{"gym_class": cls.ID, "member": w.bob.ID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, w.alice.ID.String(), decode(t, resp)["member"])

	resp = s.do("GET", "/classes/"+cls.ID.String(), w.aliceT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, true, body["is_enrolled"])
	assert.EqualValues(t, 1, body["current_capacity"])
	info := body["trainer_info"].(map[string]interface{})
	assert.Equal(t, "Coach Lan", info["full_name"])
	assert.Equal(t, "gym", info["specialization"])

	resp = s.do("GET", "/classes/"+cls.ID.String(), w.bobT, nil)
	assert.Equal(t, false, decode(t, resp)["is_enrolled"])
}

func TestEnrollmentErrorsArePayloads(t *testing.T) {
	s := newTestServer(t)
	w := s.world()
	cls := s.class(w.coach, 1)

	resp := s.do("POST", "/enrollments", w.deskT, gin.H{"gym_class": cls.ID})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "member", decode(t, resp)["field"])

	resp = s.do("POST", "/enrollments", w.deskT, gin.H{"gym_class": cls.ID, "member": w.alice.ID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do("POST", "/enrollments", w.bobT, gin.H{"gym_class": cls.ID})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Class is full", decode(t, resp)["error"])

	resp = s.do("POST", "/enrollments", w.coachT, gin.H{"gym_class": cls.ID})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestSoftDeleteRestoreFlow(t *testing.T) {
	s := newTestServer(t)
	w := s.world()
	cls := s.class(w.coach, 5)
	path := "/classes/" + cls.ID.String()

	require.Equal(t, http.StatusOK, s.do("DELETE", path, w.adminT, nil).Code)
	resp := s.do("GET", path, w.aliceT, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotEmpty(t, decode(t, resp)["error"])

	assert.Equal(t, http.StatusBadRequest, s.do("DELETE", path, w.adminT, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("POST", path+"/restore", w.deskT, nil).Code)

	require.Equal(t, http.StatusOK, s.do("POST", path+"/restore", w.adminT, nil).Code)
	resp = s.do("GET", path, w.aliceT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Yoga", decode(t, resp)["name"])

	assert.Equal(t, http.StatusBadRequest, s.do("POST", path+"/restore", w.adminT, nil).Code)
}

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("GET", "/stats/members?start_date=not-a-date", w.adminT, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid date format", decode(t, resp)["error"])

	assert.Equal(t, http.StatusForbidden, s.do("GET", "/stats/members", w.aliceT, nil).Code)

	q := "/stats/revenue?period=monthly&start_date=2024-01-01&end_date=2024-03-01"
	first := s.do("GET", q, w.adminT, nil)
	require.Equal(t, http.StatusOK, first.Code)

	require.NoError(t, s.db.Create(&models.Payment{
		MemberID: w.alice.ID, Amount: 100, PaymentMethod: models.MethodVNPay,
		Status: models.TransactionSuccess, DatePaid: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}).Error)

	second := s.do("GET", q, w.adminT, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	resp = s.do("GET", "/stats/classes/export", w.adminT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), ".xlsx")

	resp = s.do("POST", "/stats/snapshot", w.adminT, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	resp = s.do("GET", "/stats", w.adminT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestNotificationsScopedAndReadable(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("POST", "/notifications", w.deskT, gin.H{"member": w.alice.ID, "message": "Lớp Yoga đổi giờ", "type": "class_schedule"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	id := decode(t, resp)["id"].(string)

	assert.Equal(t, http.StatusForbidden, s.do("POST", "/notifications", w.aliceT, gin.H{"member": w.alice.ID, "message": "x", "type": "promotion"}).Code)

	resp = s.do("GET", "/notifications/unread-count", w.aliceT, nil)
	assert.EqualValues(t, 1, decode(t, resp)["unread_count"])

	assert.Equal(t, http.StatusNotFound, s.do("PATCH", "/notifications/"+id+"/read", w.bobT, nil).Code)
	require.Equal(t, http.StatusOK, s.do("PATCH", "/notifications/"+id+"/read", w.aliceT, nil).Code)

	resp = s.do("GET", "/notifications/unread-count", w.aliceT, nil)
	assert.EqualValues(t, 0, decode(t, resp)["unread_count"])
}

func TestInternalNewsForStaffOnly(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("POST", "/internalnews", w.coachT, gin.H{"title": "Lịch trực tháng 6", "content": "..."})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	body := decode(t, resp)
	assert.Equal(t, "Coach Lan", body["author_name"])
	assert.Equal(t, "lich-truc-thang-6", body["slug"])

	assert.Equal(t, http.StatusForbidden, s.do("GET", "/internalnews", w.aliceT, nil).Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/internalnews", w.deskT, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("PUT", "/internalnews/"+body["id"].(string), w.deskT, gin.H{"title": "x"}).Code)
}

func TestPaymentDuplicateTransactionNamesField(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	payload := gin.H{"member": w.alice.ID, "amount": 300000, "payment_method": "momo", "status": "success", "transaction_id": "TX-1"}
	require.Equal(t, http.StatusCreated, s.do("POST", "/payments", w.deskT, payload).Code)

	resp := s.do("POST", "/payments", w.deskT, payload)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "transaction_id", decode(t, resp)["field"])

	resp = s.do("GET", "/payments", w.bobT, nil)
	assert.EqualValues(t, 0, decode(t, resp)["total"])
	resp = s.do("GET", "/payments", w.aliceT, nil)
	assert.EqualValues(t, 1, decode(t, resp)["total"])
}

func TestMembersListAndTrainerStudents(t *testing.T) {
	s := newTestServer(t)
	w := s.world()
	cls := s.class(w.coach, 5)
	require.Equal(t, http.StatusCreated, s.do("POST", "/enrollments", w.aliceT, gin.H{"gym_class": cls.ID}).Code)

	resp := s.do("GET", "/members?not_in_class="+cls.ID.String(), w.deskT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, decode(t, resp)["total"])

	assert.Equal(t, http.StatusForbidden, s.do("GET", "/members", w.aliceT, nil).Code)

	resp = s.do("GET", "/trainer/students", w.coachT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var students []models.User
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, "alice", students[0].Username)
}

func TestCreateReceptionistRequiresShift(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("POST", "/receptionists", w.adminT, gin.H{"username": "r2", "password": "secret123"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "work_shift", decode(t, resp)["field"])

	resp = s.do("POST", "/receptionists", w.adminT, gin.H{"username": "r2", "password": "secret123", "work_shift": "evening"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "receptionist", decode(t, resp)["role"])
}

func TestPublicRegistrationIsAlwaysMember(t *testing.T) {
	s := newTestServer(t)
	resp := s.do("POST", "/users", "", gin.H{"username": "newbie", "password": "secret123", "role": "admin"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "member", decode(t, resp)["role"])
}

func TestOwnerUpdateCannotChangeMembership(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("PATCH", "/users/"+w.alice.ID.String(), w.aliceT, gin.H{
		"full_name":      "Alice Nguyen",
		"payment_status": "paid",
		"join_date":      "2020-01-01",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Alice Nguyen", decode(t, resp)["full_name"])

	var m models.Member
	require.NoError(t, s.db.First(&m, "user_id = ?", w.alice.ID).Error)
	assert.Equal(t, models.PaymentStatusUnpaid, m.PaymentStatus)
	assert.Nil(t, m.JoinDate)

	resp = s.do("PATCH", "/members/"+w.alice.ID.String(), w.deskT, gin.H{"payment_status": "paid"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, s.db.First(&m, "user_id = ?", w.alice.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, m.PaymentStatus)
	assert.NotNil(t, m.JoinDate)
}

func TestMemberPaymentStaysPendingAndOutOfRevenue(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("POST", "/payments", w.aliceT, gin.H{"amount": 99999999, "payment_method": "momo", "status": "success"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "pending", decode(t, resp)["status"])

	resp = s.do("POST", "/payments", w.deskT, gin.H{"member": w.bob.ID, "amount": 500, "payment_method": "vnpay", "status": "success"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "success", decode(t, resp)["status"])

	resp = s.do("GET", "/stats/revenue?period=yearly", w.adminT, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var buckets []services.RevenueStat
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &buckets))
	var total float64
	for _, b := range buckets {
		total += b.TotalRevenue
	}
	assert.Equal(t, 500.0, total)
}

func TestUpdatePaymentValidatesLikeCreate(t *testing.T) {
	s := newTestServer(t)
	w := s.world()

	resp := s.do("POST", "/payments", w.deskT, gin.H{"member": w.alice.ID, "amount": 100, "payment_method": "momo"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	path := "/payments/" + decode(t, resp)["id"].(string)

	resp = s.do("PATCH", path, w.deskT, gin.H{"amount": -5})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "amount", decode(t, resp)["field"])

	resp = s.do("PATCH", path, w.deskT, gin.H{"payment_method": "cash"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "payment_method", decode(t, resp)["field"])

	var p models.Payment
	require.NoError(t, s.db.First(&p, "transaction_id <> ''").Error)
	assert.Equal(t, 100.0, p.Amount)
	assert.Equal(t, models.MethodMomo, p.PaymentMethod)
}

func TestCreateNotificationReportsDatabaseFailure(t *testing.T) {
	s := newTestServer(t)
	w := s.world()
	require.NoError(t, s.db.Migrator().DropTable(&models.Member{}))

	resp := s.do("POST", "/notifications", w.deskT, gin.H{"member": w.alice.ID, "message": "x", "type": "reminder"})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Nil(t, decode(t, resp)["field"])
}
