package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/models"
)

const (
	DateLayout      = "2006-01-02"
	DefaultStatsTTL = time.Hour
)

type Metric string

const (
	MetricMembers Metric = "member"
	MetricRevenue Metric = "revenue"
	MetricClasses Metric = "class"
)

// StatsParams là tham số chung của ba loại thống kê.
type StatsParams struct {
	Period models.PeriodType
	Start  time.Time
	End    time.Time
}

// ParseStatsParams đọc period/start_date/end_date; ngày sai định dạng trả lỗi trước khi tính toán.
func ParseStatsParams(period, start, end string, now time.Time) (StatsParams, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	p := StatsParams{
		Period: models.PeriodType(period),
		Start:  today.AddDate(0, 0, -365),
		End:    today,
	}
	if period == "" {
		p.Period = models.PeriodMonthly
	}

	var err error
	if start != "" {
		if p.Start, err = time.Parse(DateLayout, start); err != nil {
			return StatsParams{}, Validation("Invalid date format")
		}
	}
	if end != "" {
		if p.End, err = time.Parse(DateLayout, end); err != nil {
			return StatsParams{}, Validation("Invalid date format")
		}
	}
	return p, nil
}

func (p StatsParams) CacheKey(m Metric) string {
	return fmt.Sprintf("%s_stats_%s_%s_%s", m, p.Period, p.Start.Format(DateLayout), p.End.Format(DateLayout))
}

type MemberStat struct {
	PeriodStart      string `json:"period_start"`
	PeriodEnd        string `json:"period_end"`
	MemberCount      int64  `json:"member_count"`
	NewMembers       int64  `json:"new_members"`
	CancelledMembers int64  `json:"cancelled_members"`
}

type RevenueStat struct {
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	TotalRevenue float64 `json:"total_revenue"`
}

type ClassStat struct {
	ClassID          uuid.UUID `json:"class_id"`
	ClassName        string    `json:"class_name"`
	TotalEnrollments int64     `json:"total_enrollments"`
}

type StatsService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewStatsService(db *gorm.DB, c cache.Cache, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsService{db: db, cache: c, ttl: ttl}
}

// cached trả nguyên văn JSON đã lưu khi còn trong TTL; lỗi cache coi như miss.
func (s *StatsService) cached(ctx context.Context, key string, compute func() (interface{}, error)) ([]byte, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Lỗi đọc cache %s: %v", key, err)
		} else if ok {
			return data, nil
		}
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, Internal("Cannot encode statistics", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			log.Printf("Lỗi ghi cache %s: %v", key, err)
		}
	}
	return data, nil
}

// buckets chia [start, end] theo bước cố định 7/30/365 ngày, không theo lịch.
func buckets(p StatsParams) [][2]time.Time {
	step := p.Period.Step()
	var out [][2]time.Time
	for cur := p.Start; !cur.After(p.End); cur = cur.Add(step) {
		out = append(out, [2]time.Time{cur, cur.Add(step)})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *StatsService) memberBuckets(ctx context.Context, p StatsParams) ([]MemberStat, error) {
	db := s.db.WithContext(ctx)
	stats := []MemberStat{}
	for _, b := range buckets(p) {
		from, to := dateOnly(b[0]), dateOnly(b[1])
		st := MemberStat{
			PeriodStart: from.Format(DateLayout),
			PeriodEnd:   to.Format(DateLayout),
		}

		err := db.Model(&models.Member{}).
			Joins("JOIN users ON users.id = members.user_id").
			Where("users.active = ? AND members.join_date <= ?", true, to).
			Count(&st.MemberCount).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		err = db.Model(&models.Member{}).
			Where("join_date >= ? AND join_date <= ?", from, to).
			Count(&st.NewMembers).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		err = db.Model(&models.Member{}).
			Where("cancellation_date >= ? AND cancellation_date <= ?", from, to).
			Count(&st.CancelledMembers).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *StatsService) revenueBuckets(ctx context.Context, p StatsParams) ([]RevenueStat, error) {
	db := s.db.WithContext(ctx)
	stats := []RevenueStat{}
	for _, b := range buckets(p) {
		var total float64
		err := db.Model(&models.Payment{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("status = ? AND date_paid >= ? AND date_paid <= ?", models.TransactionSuccess, b[0], b[1]).
			Scan(&total).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		stats = append(stats, RevenueStat{
			PeriodStart:  b[0].Format(DateLayout),
			PeriodEnd:    b[1].Format(DateLayout),
			TotalRevenue: total,
		})
	}
	return stats, nil
}

// classTotals đếm đăng ký theo ngày tạo trong [start, end] cho mọi lớp, kể cả lớp đã xóa mềm.
func (s *StatsService) classTotals(ctx context.Context, p StatsParams) ([]ClassStat, error) {
	db := s.db.WithContext(ctx)
	var classes []models.Class
	if err := db.Unscoped().Order("name").Find(&classes).Error; err != nil {
		return nil, FromDB(err, "")
	}

	from, until := dateOnly(p.Start), dateOnly(p.End).AddDate(0, 0, 1)
	stats := make([]ClassStat, 0, len(classes))
	for _, cls := range classes {
		st := ClassStat{ClassID: cls.ID, ClassName: cls.Name}
		err := db.Model(&models.Enrollment{}).
			Where("gym_class_id = ? AND created_at >= ? AND created_at < ?", cls.ID, from, until).
			Count(&st.TotalEnrollments).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *StatsService) MemberStats(ctx context.Context, p StatsParams) ([]byte, error) {
	return s.cached(ctx, p.CacheKey(MetricMembers), func() (interface{}, error) {
		return s.memberBuckets(ctx, p)
	})
}

func (s *StatsService) RevenueStats(ctx context.Context, p StatsParams) ([]byte, error) {
	return s.cached(ctx, p.CacheKey(MetricRevenue), func() (interface{}, error) {
		return s.revenueBuckets(ctx, p)
	})
}

func (s *StatsService) ClassStats(ctx context.Context, p StatsParams) ([]byte, error) {
	return s.cached(ctx, p.CacheKey(MetricClasses), func() (interface{}, error) {
		return s.classTotals(ctx, p)
	})
}

// Metric trả dữ liệu thô của một loại thống kê theo tên dùng trên URL.
func (s *StatsService) Metric(ctx context.Context, name string, p StatsParams) ([]byte, error) {
	m, ok := metricOf(name)
	if !ok {
		return nil, NotFound("Unknown statistic: " + name)
	}
	switch m {
	case MetricMembers:
		return s.MemberStats(ctx, p)
	case MetricRevenue:
		return s.RevenueStats(ctx, p)
	}
	return s.ClassStats(ctx, p)
}

// Snapshots liệt kê các bản ghi Statistic đã lưu.
func (s *StatsService) Snapshots(ctx context.Context, period models.PeriodType, limit int) ([]models.Statistic, error) {
	q := s.db.WithContext(ctx).Order("period_start DESC, created_at DESC")
	if period != "" {
		q = q.Where("period_type = ?", period)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []models.Statistic
	if err := q.Find(&list).Error; err != nil {
		return nil, FromDB(err, "")
	}
	return list, nil
}
