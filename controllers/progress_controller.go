package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type progressRequest struct {
	Member       *uuid.UUID `json:"member"`
	Trainer      *uuid.UUID `json:"trainer"`
	GymClass     *uuid.UUID `json:"gym_class"`
	ProgressNote *string    `json:"progress_note"`
}

func ListProgress(c *gin.Context) {
	memberID, ok := queryUUID(c, "member")
	if !ok {
		return
	}
	q := dbFrom(c).Model(&models.Progress{}).Scopes(services.Scope(actorFrom(c), services.ResourceProgress))
	if memberID != nil {
		q = q.Where("member_id = ?", *memberID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	page := utils.ParsePage(c)
	var list []models.Progress
	if err := q.Scopes(page.Scope).Order("created_at DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(list, total))
}

func findProgress(c *gin.Context) (*models.Progress, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var p models.Progress
	err := dbFrom(c).Scopes(services.Scope(actorFrom(c), services.ResourceProgress)).First(&p, "id = ?", id).Error
	if err != nil {
		respondError(c, services.FromDB(err, "Progress not found"))
		return nil, false
	}
	return &p, true
}

func GetProgress(c *gin.Context) {
	if p, ok := findProgress(c); ok {
		c.JSON(http.StatusOK, p)
	}
}

// CreateProgress: huấn luyện viên luôn ghi với tư cách chính mình, admin phải chỉ định trainer.
func CreateProgress(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := actorFrom(c)
	if req.Member == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Member is required", "field": "member"})
		return
	}
	if req.ProgressNote == nil || *req.ProgressNote == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Progress note is required", "field": "progress_note"})
		return
	}

	p := models.Progress{
		MemberID:     *req.Member,
		GymClassID:   req.GymClass,
		ProgressNote: *req.ProgressNote,
	}
	p.Active = true
	switch {
	case actor.Role == models.RoleTrainer:
		p.TrainerID = actor.UserID
	case req.Trainer != nil:
		p.TrainerID = *req.Trainer
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trainer is required", "field": "trainer"})
		return
	}

	if err := dbFrom(c).Create(&p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProgress: chỉ tác giả hoặc admin; trainer tìm qua Scope nên không thấy ghi chú của người khác.
func UpdateProgress(c *gin.Context) {
	p, ok := findProgress(c)
	if !ok {
		return
	}
	if !actorFrom(c).Is(models.RoleAdmin, models.RoleTrainer) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ProgressNote != nil {
		p.ProgressNote = *req.ProgressNote
	}
	if req.GymClass != nil {
		p.GymClassID = req.GymClass
	}
	if err := dbFrom(c).Omit("Member", "Trainer", "GymClass").Save(p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func DeleteProgress(c *gin.Context) {
	p, ok := findProgress(c)
	if !ok {
		return
	}
	if !actorFrom(c).Is(models.RoleAdmin, models.RoleTrainer) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}
	if err := dbFrom(c).Delete(p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
