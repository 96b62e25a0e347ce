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

type trainerInfo struct {
	ID             uuid.UUID             `json:"id"`
	FullName       string                `json:"full_name"`
	Specialization models.Specialization `json:"specialization"`
}

type classResponse struct {
	models.Class
	TrainerInfo *trainerInfo `json:"trainer_info"`
	IsEnrolled  bool         `json:"is_enrolled"`
}

// classResponses gắn trainer_info và is_enrolled (chỉ có ý nghĩa với hội viên).
func classResponses(c *gin.Context, svc *services.ClassService, classes []models.Class) ([]classResponse, error) {
	enrolled := map[uuid.UUID]bool{}
	actor := actorFrom(c)
	if actor.Role == models.RoleMember && len(classes) > 0 {
		ids := make([]uuid.UUID, len(classes))
		for i := range classes {
			ids[i] = classes[i].ID
		}
		var err error
		if enrolled, err = svc.EnrolledClassIDs(c.Request.Context(), actor.UserID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]classResponse, len(classes))
	for i, cls := range classes {
		out[i] = classResponse{Class: cls, IsEnrolled: enrolled[cls.ID]}
		if t := cls.Trainer; t != nil {
			info := &trainerInfo{ID: t.ID, FullName: t.FullName}
			if t.Trainer != nil {
				info.Specialization = t.Trainer.Specialization
			}
			out[i].TrainerInfo = info
		}
	}
	return out, nil
}

func classResponseOne(c *gin.Context, svc *services.ClassService, cls *models.Class) (classResponse, error) {
	out, err := classResponses(c, svc, []models.Class{*cls})
	if err != nil {
		return classResponse{}, err
	}
	return out[0], nil
}

type classRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Trainer     *uuid.UUID          `json:"trainer"`
	StartTime   *time.Time          `json:"start_time"`
	EndTime     *time.Time          `json:"end_time"`
	MaxMembers  *int                `json:"max_members"`
	Status      *models.ClassStatus `json:"status"`
	Price       *float64            `json:"price"`
}

func ListClasses(c *gin.Context) {
	trainerID, ok := queryUUID(c, "trainer")
	if !ok {
		return
	}
	filter := services.ClassFilter{TrainerID: trainerID}
	if c.Query("deleted") == "true" {
		if actorFrom(c).Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admin can list deleted classes"})
			return
		}
		filter.OnlyDeleted = true
	}

	svc := services.NewClassService(dbFrom(c))
	page := utils.ParsePage(c)
	classes, total, err := svc.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := classResponses(c, svc, classes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(data, total))
}

func GetClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	svc := services.NewClassService(dbFrom(c))
	cls, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := classResponseOne(c, svc, cls)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func CreateClass(c *gin.Context) {
	var req classRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Trainer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trainer is required", "field": "trainer"})
		return
	}

	in := services.ClassInput{TrainerID: *req.Trainer}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		in.EndTime = *req.EndTime
	}
	if req.MaxMembers != nil {
		in.MaxMembers = *req.MaxMembers
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Price != nil {
		in.Price = *req.Price
	}

	svc := services.NewClassService(dbFrom(c))
	cls, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	if cls, err = svc.Get(c.Request.Context(), cls.ID); err != nil {
		respondError(c, err)
		return
	}
	resp, err := classResponseOne(c, svc, cls)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateClass bỏ qua current_capacity dù client có gửi.
func UpdateClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req classRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := services.NewClassService(dbFrom(c))
	cls, err := svc.Update(c.Request.Context(), id, services.ClassPatch{
		Name:        req.Name,
		Description: req.Description,
		TrainerID:   req.Trainer,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxMembers:  req.MaxMembers,
		Status:      req.Status,
		Price:       req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := classResponseOne(c, svc, cls)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func DeleteClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cls, err := services.NewClassService(dbFrom(c)).SoftDelete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class '" + cls.Name + "' was soft deleted"})
}

func RestoreClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cls, err := services.NewClassService(dbFrom(c)).Restore(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class '" + cls.Name + "' was restored"})
}

// TrainerClasses: các lớp do huấn luyện viên gọi API phụ trách.
func TrainerClasses(c *gin.Context) {
	svc := services.NewClassService(dbFrom(c))
	classes, err := svc.TrainerClasses(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := classResponses(c, svc, classes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
