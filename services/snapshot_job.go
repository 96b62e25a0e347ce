package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/models"
)

// SnapshotJob lưu định kỳ bảng statistics từ số liệu hiện tại.
type SnapshotJob struct {
	db     *gorm.DB
	stats  *StatsService
	period models.PeriodType
	now    func() time.Time
}

func NewSnapshotJob(db *gorm.DB, stats *StatsService, period models.PeriodType) *SnapshotJob {
	if period == "" {
		period = models.PeriodMonthly
	}
	return &SnapshotJob{db: db, stats: stats, period: period, now: time.Now}
}

// RunOnce tính kỳ vừa kết thúc (now - step, now) và ghi một dòng tổng hợp cùng một dòng cho mỗi lớp.
func (j *SnapshotJob) RunOnce(ctx context.Context) ([]models.Statistic, error) {
	end := dateOnly(j.now().UTC())
	from := end.Add(-j.period.Step())
	// Start == End: đúng một bucket [from, end]
	p := StatsParams{Period: j.period, Start: from, End: from}

	members, err := j.stats.memberBuckets(ctx, p)
	if err != nil {
		return nil, err
	}
	revenue, err := j.stats.revenueBuckets(ctx, p)
	if err != nil {
		return nil, err
	}

	var classes []models.Class
	if err := j.db.WithContext(ctx).Find(&classes).Error; err != nil {
		return nil, FromDB(err, "")
	}

	start, stop := datatypes.Date(p.Start), datatypes.Date(end)
	summary := models.Statistic{
		PeriodType:       j.period,
		PeriodStart:      start,
		PeriodEnd:        stop,
		MemberCount:      members[0].MemberCount,
		NewMembers:       members[0].NewMembers,
		CancelledMembers: members[0].CancelledMembers,
		TotalRevenue:     revenue[0].TotalRevenue,
	}
	rows := []models.Statistic{summary}

	for _, cls := range classes {
		var n int64
		err := j.db.WithContext(ctx).Model(&models.Enrollment{}).
			Where("gym_class_id = ? AND created_at >= ? AND created_at < ?", cls.ID, p.Start, end.AddDate(0, 0, 1)).
			Count(&n).Error
		if err != nil {
			return nil, FromDB(err, "")
		}
		id := cls.ID
		rate := 0.0
		if cls.MaxMembers > 0 {
			rate = float64(cls.CurrentCapacity) / float64(cls.MaxMembers) * 100
		}
		rows = append(rows, models.Statistic{
			PeriodType:      j.period,
			PeriodStart:     start,
			PeriodEnd:       stop,
			ClassID:         &id,
			EnrollmentCount: n,
			AttendanceRate:  rate,
		})
	}

	rows, err = j.missing(ctx, start, rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := j.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, FromDB(err, "")
	}
	return rows, nil
}

// missing bỏ các dòng đã có cùng (period_type, period_start, class_id).
func (j *SnapshotJob) missing(ctx context.Context, start datatypes.Date, rows []models.Statistic) ([]models.Statistic, error) {
	var existing []models.Statistic
	err := j.db.WithContext(ctx).
		Select("class_id").
		Where("period_type = ? AND period_start = ?", j.period, start).
		Find(&existing).Error
	if err != nil {
		return nil, FromDB(err, "")
	}

	var hasSummary bool
	done := make(map[uuid.UUID]bool, len(existing))
	for _, e := range existing {
		if e.ClassID == nil {
			hasSummary = true
		} else {
			done[*e.ClassID] = true
		}
	}

	out := rows[:0]
	for _, r := range rows {
		if (r.ClassID == nil && hasSummary) || (r.ClassID != nil && done[*r.ClassID]) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Start chạy snapshot ngay khi khởi động rồi lặp lại theo interval cho tới khi ctx bị hủy.
func (j *SnapshotJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	log.Println("Đang chạy snapshot thống kê lần đầu...")
	j.run(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Println("Snapshot job được kích hoạt...")
				j.run(ctx)
			}
		}
	}()

	log.Printf("Snapshot job đã được khởi động (chạy mỗi %s)", interval)
}

func (j *SnapshotJob) run(ctx context.Context) {
	rows, err := j.RunOnce(ctx)
	if err != nil {
		log.Printf("Lỗi khi lưu snapshot thống kê: %v", err)
		return
	}
	log.Printf("Đã lưu %d dòng thống kê", len(rows))
}
