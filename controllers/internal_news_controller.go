package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

type newsRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type newsResponse struct {
	models.InternalNews
	AuthorName string `json:"author_name"`
}

func toNewsResponse(n models.InternalNews) newsResponse {
	resp := newsResponse{InternalNews: n}
	if n.Author != nil {
		resp.AuthorName = n.Author.FullName
		if resp.AuthorName == "" {
			resp.AuthorName = n.Author.Username
		}
	}
	return resp
}

func ListInternalNews(c *gin.Context) {
	q := dbFrom(c).Model(&models.InternalNews{}).Scopes(services.Scope(actorFrom(c), services.ResourceInternalNews))
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	page := utils.ParsePage(c)
	var list []models.InternalNews
	if err := q.Preload("Author").Scopes(page.Scope).Order("created_at DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	out := make([]newsResponse, len(list))
	for i, n := range list {
		out[i] = toNewsResponse(n)
	}
	c.JSON(http.StatusOK, page.Response(out, total))
}

func findNews(c *gin.Context) (*models.InternalNews, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var n models.InternalNews
	err := dbFrom(c).Scopes(services.Scope(actorFrom(c), services.ResourceInternalNews)).
		Preload("Author").First(&n, "internal_news.id = ?", id).Error
	if err != nil {
		respondError(c, services.FromDB(err, "News not found"))
		return nil, false
	}
	return &n, true
}

func GetInternalNews(c *gin.Context) {
	if n, ok := findNews(c); ok {
		c.JSON(http.StatusOK, toNewsResponse(*n))
	}
}

// CreateInternalNews: tác giả luôn là huấn luyện viên gọi API.
func CreateInternalNews(c *gin.Context) {
	var req newsRequest
	if !bindJSON(c, &req) {
		return
	}
	title := strings.TrimSpace(deref(req.Title))
	if title == "" || req.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	n := models.InternalNews{
		AuthorID: actorFrom(c).UserID,
		Title:    title,
		Slug:     slug.Make(title),
		Content:  *req.Content,
	}
	n.Active = true
	db := dbFrom(c)
	if err := db.Create(&n).Error; err != nil {
		respondError(c, err)
		return
	}
	db.Preload("Author").First(&n, "id = ?", n.ID)
	c.JSON(http.StatusCreated, toNewsResponse(n))
}

func canEditNews(c *gin.Context, n *models.InternalNews) bool {
	actor := actorFrom(c)
	if actor.Role == models.RoleAdmin || actor.UserID == n.AuthorID {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or an admin can change this news"})
	return false
}

func UpdateInternalNews(c *gin.Context) {
	n, ok := findNews(c)
	if !ok || !canEditNews(c, n) {
		return
	}
	var req newsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			n.Title = title
			n.Slug = slug.Make(title)
		}
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if err := dbFrom(c).Omit("Author").Save(n).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNewsResponse(*n))
}

func DeleteInternalNews(c *gin.Context) {
	n, ok := findNews(c)
	if !ok || !canEditNews(c, n) {
		return
	}
	if err := dbFrom(c).Delete(n).Error; err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
