package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type appointmentRequest struct {
	Member   *uuid.UUID `json:"member"`
	Trainer  *uuid.UUID `json:"trainer"`
	DateTime *time.Time `json:"date_time"`
}

func ListAppointments(c *gin.Context) {
	q := dbFrom(c).Model(&models.Appointment{}).Scopes(services.Scope(actorFrom(c), services.ResourceAppointment))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	page := utils.ParsePage(c)
	var list []models.Appointment
	if err := q.Scopes(page.Scope).Order("date_time DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(list, total))
}

func findAppointment(c *gin.Context) (*models.Appointment, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var a models.Appointment
	err := dbFrom(c).Scopes(services.Scope(actorFrom(c), services.ResourceAppointment)).First(&a, "id = ?", id).Error
	if err != nil {
		respondError(c, services.FromDB(err, "Appointment not found"))
		return nil, false
	}
	return &a, true
}

func GetAppointment(c *gin.Context) {
	if a, ok := findAppointment(c); ok {
		c.JSON(http.StatusOK, a)
	}
}

// CreateAppointment: hội viên đặt cho chính mình, lễ tân/admin đặt cho hội viên bất kỳ.
func CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Trainer == nil || req.DateTime == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trainer and date_time are required"})
		return
	}

	actor := actorFrom(c)
	a := models.Appointment{TrainerID: *req.Trainer, DateTime: *req.DateTime}
	a.Active = true
	switch actor.Role {
	case models.RoleMember:
		a.MemberID = actor.UserID
	case models.RoleReceptionist, models.RoleAdmin:
		if req.Member == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Member is required", "field": "member"})
			return
		}
		a.MemberID = *req.Member
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create appointments"})
		return
	}

	if err := dbFrom(c).Create(&a).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func UpdateAppointment(c *gin.Context) {
	a, ok := findAppointment(c)
	if !ok {
		return
	}
	var req appointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DateTime != nil {
		a.DateTime = *req.DateTime
	}
	if req.Trainer != nil {
		a.TrainerID = *req.Trainer
	}
	if err := dbFrom(c).Omit("Member", "Trainer").Save(a).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func DeleteAppointment(c *gin.Context) {
	a, ok := findAppointment(c)
	if !ok {
		return
	}
	if err := dbFrom(c).Delete(a).Error; err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
