package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/utils"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	// Nếu không có, thử X-Auth-Token (cho app mobile)
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// authenticate xác thực JWT và đọc role hiện tại từ DB (role trong token có thể đã cũ).
// Trả về false khi request đã bị abort.
func authenticate(c *gin.Context) bool {
	if c.GetHeader("Authorization") == "" && c.GetHeader("X-Auth-Token") == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return false
	}
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header"})
		return false
	}

	claims, err := utils.VerifyToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return false
	}

	db := c.MustGet("db").(*gorm.DB)
	var user models.User
	if err := db.WithContext(c.Request.Context()).
		Select("id", "role", "active").
		First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return false
	}
	if !user.Active {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return false
	}

	// Lưu thông tin vào context để controller dùng
	c.Set("user_id", user.ID.String())
	c.Set("role", string(user.Role))
	return true
}

// AuthMiddleware cần chạy sau DBMiddleware.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c) {
			c.Next()
		}
	}
}

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập.
func RequireRoles(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("role"); !exists && !authenticate(c) {
			return
		}

		role := models.UserRole(c.GetString("role"))
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "You do not have permission to perform this action",
		})
	}
}

// OptionalAuthMiddleware: không có token hoặc token sai thì coi như anonymous.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		db := c.MustGet("db").(*gorm.DB)
		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Select("id", "role", "active").
			First(&user, "id = ?", claims.UserID).Error; err == nil && user.Active {
			c.Set("user_id", user.ID.String())
			c.Set("role", string(user.Role))
		}
		c.Next()
	}
}
