package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
)

// StatsHandler phục vụ /stats; dùng chung StatsService (và cache) cho cả ứng dụng.
type StatsHandler struct {
	Stats    *services.StatsService
	Snapshot *services.SnapshotJob
}

func statsParams(c *gin.Context) (services.StatsParams, bool) {
	p, err := services.ParseStatsParams(c.Query("period"), c.Query("start_date"), c.Query("end_date"), time.Now())
	if err != nil {
		respondError(c, err)
		return p, false
	}
	return p, true
}

// metric trả về handler ghi thẳng JSON đã cache, không decode lại.
func (h *StatsHandler) metric(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := statsParams(c)
		if !ok {
			return
		}
		data, err := h.Stats.Metric(c.Request.Context(), name, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

func (h *StatsHandler) MemberStats() gin.HandlerFunc  { return h.metric("members") }
func (h *StatsHandler) RevenueStats() gin.HandlerFunc { return h.metric("revenue") }
func (h *StatsHandler) ClassStats() gin.HandlerFunc   { return h.metric("classes") }

func (h *StatsHandler) Export(c *gin.Context) {
	p, ok := statsParams(c)
	if !ok {
		return
	}
	name := c.Param("metric")
	buf, err := h.Stats.ExportStats(c.Request.Context(), name, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+services.ExportFilename(name, p)+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ListSnapshots: GET /stats?period=&limit=
func (h *StatsHandler) ListSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.Stats.Snapshots(c.Request.Context(), models.PeriodType(c.Query("period")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *StatsHandler) RunSnapshot(c *gin.Context) {
	rows, err := h.Snapshot.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rows)
}
