package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type paymentRequest struct {
	Member        *uuid.UUID                `json:"member"`
	Amount        *float64                  `json:"amount"`
	PaymentMethod *models.PaymentMethod     `json:"payment_method"`
	Status        *models.TransactionStatus `json:"status"`
	TransactionID string                    `json:"transaction_id"`
}

func ListPayments(c *gin.Context) {
	q := dbFrom(c).Model(&models.Payment{}).Scopes(services.Scope(actorFrom(c), services.ResourcePayment))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	page := utils.ParsePage(c)
	var list []models.Payment
	if err := q.Scopes(page.Scope).Order("date_paid DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page.Response(list, total))
}

func findPayment(c *gin.Context) (*models.Payment, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var p models.Payment
	err := dbFrom(c).Scopes(services.Scope(actorFrom(c), services.ResourcePayment)).First(&p, "id = ?", id).Error
	if err != nil {
		respondError(c, services.FromDB(err, "Payment not found"))
		return nil, false
	}
	return &p, true
}

func GetPayment(c *gin.Context) {
	if p, ok := findPayment(c); ok {
		c.JSON(http.StatusOK, p)
	}
}

// CreatePayment: transaction_id trống thì sinh uuid; trùng thì báo lỗi theo field.
func CreatePayment(c *gin.Context) {
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a non-negative number", "field": "amount"})
		return
	}
	if req.PaymentMethod == nil || !req.PaymentMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method", "field": "payment_method"})
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
		return
	}

	actor := actorFrom(c)
	p := models.Payment{
		Amount:        *req.Amount,
		PaymentMethod: *req.PaymentMethod,
		Status:        models.TransactionPending,
		TransactionID: req.TransactionID,
	}
	switch actor.Role {
	case models.RoleMember:
		// hội viên tự tạo thì luôn chờ xác nhận, chỉ nhân viên mới chốt success/failed
		p.MemberID = actor.UserID
	case models.RoleAdmin, models.RoleReceptionist:
		if req.Member == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Member is required", "field": "member"})
			return
		}
		p.MemberID = *req.Member
		if req.Status != nil {
			p.Status = *req.Status
		}
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create payments"})
		return
	}

	if err := dbFrom(c).Create(&p).Error; err != nil {
		respondError(c, services.FromDB(err, ""))
		return
	}
	c.JSON(http.StatusCreated, p)
}

func UpdatePayment(c *gin.Context) {
	p, ok := findPayment(c)
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
			return
		}
		p.Status = *req.Status
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a non-negative number", "field": "amount"})
			return
		}
		p.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method", "field": "payment_method"})
			return
		}
		p.PaymentMethod = *req.PaymentMethod
	}
	if err := dbFrom(c).Omit("Member").Save(p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func DeletePayment(c *gin.Context) {
	p, ok := findPayment(c)
	if !ok {
		return
	}
	if err := dbFrom(c).Delete(p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
