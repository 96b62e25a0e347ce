package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

// accountRequest nhận cả JSON lẫn multipart (khi có file avatar).
type accountRequest struct {
	Username         string  `json:"username" form:"username"`
	Password         *string `json:"password" form:"password"`
	Email            *string `json:"email" form:"email"`
	FullName         *string `json:"full_name" form:"full_name"`
	Phone            *string `json:"phone" form:"phone"`
	Role             string  `json:"role" form:"role"`
	Active           *bool   `json:"active" form:"active"`
	PaymentStatus    *string `json:"payment_status" form:"payment_status"`
	JoinDate         *string `json:"join_date" form:"join_date"`
	CancellationDate *string `json:"cancellation_date" form:"cancellation_date"`
	Specialization   *string `json:"specialization" form:"specialization"`
	ExperienceYears  *int    `json:"experience_years" form:"experience_years"`
	WorkShift        *string `json:"work_shift" form:"work_shift"`
}

func parseDate(field string, raw *string) (*datatypes.Date, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(services.DateLayout, *raw)
	if err != nil {
		return nil, services.FieldValidation(field, "Invalid date format, expected YYYY-MM-DD")
	}
	d := datatypes.Date(t)
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r accountRequest) input(role models.UserRole) (services.AccountInput, error) {
	in := services.AccountInput{
		Username:        r.Username,
		Password:        deref(r.Password),
		Email:           deref(r.Email),
		FullName:        deref(r.FullName),
		Phone:           r.Phone,
		Role:            role,
		PaymentStatus:   models.PaymentStatus(deref(r.PaymentStatus)),
		Specialization:  models.Specialization(deref(r.Specialization)),
		ExperienceYears: r.ExperienceYears,
		WorkShift:       models.WorkShift(deref(r.WorkShift)),
	}
	var err error
	if in.JoinDate, err = parseDate("join_date", r.JoinDate); err != nil {
		return in, err
	}
	if in.CancellationDate, err = parseDate("cancellation_date", r.CancellationDate); err != nil {
		return in, err
	}
	return in, nil
}

func (r accountRequest) patch() (services.AccountPatch, error) {
	p := services.AccountPatch{
		Password:        r.Password,
		Email:           r.Email,
		FullName:        r.FullName,
		Phone:           r.Phone,
		Active:          r.Active,
		ExperienceYears: r.ExperienceYears,
	}
	if r.PaymentStatus != nil {
		v := models.PaymentStatus(*r.PaymentStatus)
		p.PaymentStatus = &v
	}
	if r.Specialization != nil {
		v := models.Specialization(*r.Specialization)
		p.Specialization = &v
	}
	if r.WorkShift != nil {
		v := models.WorkShift(*r.WorkShift)
		p.WorkShift = &v
	}
	var err error
	if p.JoinDate, err = parseDate("join_date", r.JoinDate); err != nil {
		return p, err
	}
	if p.CancellationDate, err = parseDate("cancellation_date", r.CancellationDate); err != nil {
		return p, err
	}
	return p, nil
}

// UserHandler giữ AvatarStore cho các route /users.
type UserHandler struct {
	Avatars utils.AvatarStore
}

func (h *UserHandler) uploadAvatar(c *gin.Context, owner string) (string, bool) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return "", true
	}
	if h.Avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": utils.ErrStorageNotConfigured.Error()})
		return "", false
	}
	url, err := h.Avatars.UploadAvatar(fileHeader, owner)
	if err != nil {
		log.Printf("Upload avatar lỗi: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot upload avatar"})
		return "", false
	}
	return url, true
}

// CreateUser: đăng ký công khai luôn là member, chỉ admin mới chọn được role khác.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.UserRole(req.Role)
	if models.UserRole(c.GetString("role")) != models.RoleAdmin || role == "" {
		role = models.RoleMember
	}
	in, err := req.input(role)
	if err != nil {
		respondError(c, err)
		return
	}

	avatar, ok := h.uploadAvatar(c, req.Username)
	if !ok {
		return
	}
	in.Avatar = avatar

	user, err := services.NewAccountService(dbFrom(c)).Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := utils.ParsePage(c)
	users, total, err := services.NewAccountService(dbFrom(c)).List(c.Request.Context(), "", services.AccountFilter{Search: c.Query("search")}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(users, total))
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, err := services.NewAccountService(dbFrom(c)).Get(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser: chỉ chủ tài khoản được sửa.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if actorFrom(c).UserID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own account"})
		return
	}

	var req accountRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondError(c, err)
		return
	}
	// chủ tài khoản chỉ sửa thông tin cá nhân; trạng thái tài khoản và hồ sơ vai trò
	// đi qua /members, /trainers, /receptionists
	patch.Active = nil
	patch.PaymentStatus = nil
	patch.JoinDate = nil
	patch.CancellationDate = nil
	patch.Specialization = nil
	patch.ExperienceYears = nil
	patch.WorkShift = nil

	svc := services.NewAccountService(dbFrom(c))
	current, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	avatar, ok := h.uploadAvatar(c, current.Username)
	if !ok {
		return
	}
	if avatar != "" {
		patch.Avatar = &avatar
	}

	user, err := svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	if avatar != "" && current.Avatar != "" && h.Avatars != nil {
		go func(old string) {
			if err := h.Avatars.DeleteAvatar(old); err != nil {
				log.Printf("Xóa avatar cũ lỗi: %v", err)
			}
		}(current.Avatar)
	}
	c.JSON(http.StatusOK, user)
}

// ListAccounts liệt kê tài khoản theo vai trò; members hỗ trợ ?search= và ?not_in_class=.
func ListAccounts(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		notInClass, ok := queryUUID(c, "not_in_class")
		if !ok {
			return
		}
		filter := services.AccountFilter{
			Search:     c.Query("search"),
			NotInClass: notInClass,
			ActiveOnly: role == models.RoleMember,
		}
		page := utils.ParsePage(c)
		users, total, err := services.NewAccountService(dbFrom(c)).List(c.Request.Context(), role, filter, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page.Response(users, total))
	}
}

func GetAccount(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		user, err := services.NewAccountService(dbFrom(c)).GetWithRole(c.Request.Context(), id, role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// CreateAccount tạo tài khoản đúng vai trò; trainer/lễ tân được gửi email thông tin đăng nhập khi mailer đã cấu hình.
func CreateAccount(role models.UserRole, mailer *utils.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accountRequest
		if !bindJSON(c, &req) {
			return
		}
		in, err := req.input(role)
		if err != nil {
			respondError(c, err)
			return
		}

		user, err := services.NewAccountService(dbFrom(c)).Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}

		if role != models.RoleMember && user.Email != "" && mailer.Configured() {
			mail := utils.AccountCreatedEmail{
				FullName: user.FullName,
				Role:     string(role),
				Username: user.Username,
				Password: in.Password,
			}
			// Gửi email thông báo (không chặn luồng)
			go func(to string) {
				body, err := mail.Render()
				if err == nil {
					err = mailer.Send(to, utils.AccountCreatedSubject, body)
				}
				if err != nil {
					log.Println("Lỗi gửi email:", err)
				}
			}(user.Email)
		}

		c.JSON(http.StatusCreated, user)
	}
}

func UpdateAccount(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req accountRequest
		if !bindJSON(c, &req) {
			return
		}
		patch, err := req.patch()
		if err != nil {
			respondError(c, err)
			return
		}

		svc := services.NewAccountService(dbFrom(c))
		if _, err := svc.GetWithRole(c.Request.Context(), id, role); err != nil {
			respondError(c, err)
			return
		}
		user, err := svc.Update(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func DeleteAccount(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := services.NewAccountService(dbFrom(c)).Delete(c.Request.Context(), id, role); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// TrainerStudents: hội viên đang học các lớp của huấn luyện viên gọi API.
func TrainerStudents(c *gin.Context) {
	users, err := services.NewEnrollmentService(dbFrom(c)).TrainerStudents(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
