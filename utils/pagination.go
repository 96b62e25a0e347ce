package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePage đọc ?page=&limit= giống các API danh sách khác.
func ParsePage(c *gin.Context) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}

// Response đóng gói kết quả phân trang.
func (p Page) Response(data interface{}, total int64) gin.H {
	return gin.H{
		"data":       data,
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": (total + int64(p.Limit) - 1) / int64(p.Limit),
	}
}
