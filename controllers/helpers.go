package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
)

// respondError là chỗ duy nhất dịch lỗi nghiệp vụ sang HTTP.
func respondError(c *gin.Context, err error) {
	appErr := services.AsError(err)
	if appErr.Kind == services.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{"error": appErr.Message}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(appErr.Status(), body)
}

func dbFrom(c *gin.Context) *gorm.DB {
	return c.MustGet("db").(*gorm.DB).WithContext(c.Request.Context())
}

func actorFrom(c *gin.Context) services.Actor {
	id, _ := uuid.Parse(c.GetString("user_id"))
	return services.Actor{UserID: id, Role: models.UserRole(c.GetString("role"))}
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID đọc ?name=<uuid>; rỗng trả nil, sai định dạng trả lỗi 400.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "field": name})
		return nil, false
	}
	return &id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
