package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type enrollmentRequest struct {
	GymClass uuid.UUID  `json:"gym_class" binding:"required"`
	Member   *uuid.UUID `json:"member"`
}

func ListEnrollments(c *gin.Context) {
	classID, ok := queryUUID(c, "gym_class")
	if !ok {
		return
	}
	memberID, ok := queryUUID(c, "member")
	if !ok {
		return
	}

	page := utils.ParsePage(c)
	list, total, err := services.NewEnrollmentService(dbFrom(c)).List(c.Request.Context(), actorFrom(c),
		services.EnrollmentFilter{GymClassID: classID, MemberID: memberID}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(list, total))
}

func GetEnrollment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := services.NewEnrollmentService(dbFrom(c)).Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func CreateEnrollment(c *gin.Context) {
	var req enrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := services.NewEnrollmentService(dbFrom(c)).Enroll(c.Request.Context(), actorFrom(c), services.EnrollRequest{
		GymClassID: req.GymClass,
		MemberID:   req.Member,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func DeleteEnrollment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := services.NewEnrollmentService(dbFrom(c)).Unenroll(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
