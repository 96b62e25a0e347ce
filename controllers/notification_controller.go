package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
	"github.com/vnkhanh/sports-center-backend/ws"
)

type notificationRequest struct {
	Member  uuid.UUID               `json:"member" binding:"required"`
	Message string                  `json:"message" binding:"required"`
	Type    models.NotificationType `json:"type" binding:"required"`
}

func unreadCount(db *gorm.DB, memberID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).Where("member_id = ? AND is_read = ?", memberID, false).Count(&count).Error
	return count, err
}

// pushBadge gửi số chưa đọc mới qua websocket; lỗi đếm chỉ ghi log.
func pushBadge(db *gorm.DB, memberID uuid.UUID) {
	count, err := unreadCount(db, memberID)
	if err != nil {
		log.Printf("Không đếm được thông báo chưa đọc của %s: %v", memberID, err)
		return
	}
	ws.SendBadgeUpdate(memberID.String(), count)
}

// Danh sách thông báo
func GetNotifications(c *gin.Context) {
	q := dbFrom(c).Model(&models.Notification{}).Scopes(services.Scope(actorFrom(c), services.ResourceNotification))
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	page := utils.ParsePage(c)
	var list []models.Notification
	if err := q.Scopes(page.Scope).Order("created_at DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(list, total))
}

// Đếm số thông báo chưa đọc
func GetUnreadCount(c *gin.Context) {
	count, err := unreadCount(dbFrom(c), actorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// CreateNotification lưu thông báo rồi đẩy realtime tới hội viên.
func CreateNotification(c *gin.Context) {
	var req notificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type", "field": "type"})
		return
	}

	db := dbFrom(c)
	var n int64
	if err := db.Model(&models.Member{}).Where("user_id = ?", req.Member).Count(&n).Error; err != nil {
		respondError(c, err)
		return
	}
	if n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Member does not exist", "field": "member"})
		return
	}

	notif := models.Notification{MemberID: req.Member, Message: req.Message, Type: req.Type}
	if err := db.Create(&notif).Error; err != nil {
		respondError(c, err)
		return
	}

	ws.SendNotification(req.Member.String(), notif)
	pushBadge(db, req.Member)

	c.JSON(http.StatusCreated, notif)
}

func findNotification(c *gin.Context) (*models.Notification, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var notif models.Notification
	err := dbFrom(c).Scopes(services.Scope(actorFrom(c), services.ResourceNotification)).First(&notif, "id = ?", id).Error
	if err != nil {
		respondError(c, services.FromDB(err, "Notification not found"))
		return nil, false
	}
	return &notif, true
}

func GetNotification(c *gin.Context) {
	if notif, ok := findNotification(c); ok {
		c.JSON(http.StatusOK, notif)
	}
}

// Đánh dấu đã đọc
func MarkNotificationAsRead(c *gin.Context) {
	notif, ok := findNotification(c)
	if !ok {
		return
	}

	db := dbFrom(c)
	now := time.Now()
	if err := db.Model(notif).Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		respondError(c, err)
		return
	}

	// Gửi cập nhật badge realtime
	pushBadge(db, notif.MemberID)
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllAsRead(c *gin.Context) {
	db := dbFrom(c)
	userID := actorFrom(c).UserID

	now := time.Now()
	if err := db.Model(&models.Notification{}).
		Where("member_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		respondError(c, err)
		return
	}

	ws.SendBadgeUpdate(userID.String(), 0)
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Xóa một thông báo cụ thể
func DeleteNotification(c *gin.Context) {
	notif, ok := findNotification(c)
	if !ok {
		return
	}

	db := dbFrom(c)
	if err := db.Delete(notif).Error; err != nil {
		respondError(c, err)
		return
	}

	// Cập nhật realtime badge
	pushBadge(db, notif.MemberID)
	c.Status(http.StatusNoContent)
}
