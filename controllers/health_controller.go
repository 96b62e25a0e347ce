package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/ws"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck kiểm tra DB, cache (nếu là Redis) và số kết nối websocket.
func HealthCheck(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Mặc định trạng thái OK
		response := gin.H{
			"status":    "ok",
			"message":   "Service is healthy",
			"timestamp": time.Now().Unix(),
			"db":        "ok",
			"cache":     "memory",
			"websocket": gin.H{
				"enabled": true,
				"stats":   ws.H.GetStats(),
			},
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Thử ping database
		sqlDB, err := db.DB()
		if err != nil {
			response["db"] = "error: cannot get DB instance"
			response["status"] = "degraded"
			c.JSON(http.StatusInternalServerError, response)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			response["db"] = "error: cannot connect to DB"
			response["status"] = "degraded"
			c.JSON(http.StatusInternalServerError, response)
			return
		}

		if p, ok := store.(Pinger); ok {
			response["cache"] = "ok"
			if err := p.Ping(ctx); err != nil {
				// stats vẫn chạy được khi cache lỗi, chỉ chậm hơn
				response["cache"] = "error: " + err.Error()
				response["status"] = "degraded"
			}
		}

		c.JSON(http.StatusOK, response)
	}
}
