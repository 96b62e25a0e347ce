package controllers

import (
	"errors"
	"net/http"
	"strings"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func tokenResponse(c *gin.Context, user *models.User) {
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.NewAccountService(dbFrom(c)).Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if appErr := services.AsError(err); appErr.Kind == services.KindValidation {
			c.JSON(http.StatusUnauthorized, gin.H{"error": appErr.Message})
			return
		}
		respondError(c, err)
		return
	}
	tokenResponse(c, user)
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLogin xác minh id_token; email chưa có tài khoản thì tạo hội viên mới.
func GoogleLogin(clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input GoogleLoginInput
		if !bindJSON(c, &input) {
			return
		}

		payload, err := idtoken.Validate(c.Request.Context(), input.IDToken, clientID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		email, _ := payload.Claims["email"].(string)
		fullName, _ := payload.Claims["name"].(string)
		picture, _ := payload.Claims["picture"].(string)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account has no email"})
			return
		}

		db := dbFrom(c)
		var user models.User
		err = db.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, err := services.NewAccountService(db).Create(c.Request.Context(), services.AccountInput{
				Username: strings.ToLower(email),
				Email:    email,
				FullName: fullName,
				Avatar:   picture,
				// đăng nhập Google không dùng mật khẩu
				Password: uuid.NewString(),
				Role:     models.RoleMember,
			})
			if err != nil {
				respondError(c, err)
				return
			}
			user = *created
		} else if err != nil {
			respondError(c, err)
			return
		}

		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
			return
		}
		tokenResponse(c, &user)
	}
}
