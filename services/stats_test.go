package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/models"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) joined(u *models.User, join string, cancel string) {
	f.t.Helper()
	updates := map[string]interface{}{"join_date": datatypes.Date(day(join))}
	if cancel != "" {
		updates["cancellation_date"] = datatypes.Date(day(cancel))
	}
	require.NoError(f.t, f.db.Model(&models.Member{}).Where("user_id = ?", u.ID).UpdateColumns(updates).Error)
}

func (f *fixture) pay(u *models.User, amount float64, status models.TransactionStatus, at time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.Payment{
		MemberID:      u.ID,
		Amount:        amount,
		PaymentMethod: models.MethodMomo,
		Status:        status,
		DatePaid:      at,
	}).Error)
}

func TestParseStatsParams(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	p, err := ParseStatsParams("", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, models.PeriodMonthly, p.Period)
	assert.Equal(t, "2023-06-11", p.Start.Format(DateLayout))
	assert.Equal(t, "2024-06-10", p.End.Format(DateLayout))

	_, err = ParseStatsParams("monthly", "not-a-date", "", now)
	require.Error(t, err)
	assert.Equal(t, "Invalid date format", AsError(err).Message)
	assert.Equal(t, 400, AsError(err).Status())

	_, err = ParseStatsParams("weekly", "2024-01-01", "2024/02/01", now)
	require.Error(t, err)
}

func TestRevenueCountsOnlySuccessfulPayments(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	alice := f.member("alice")
	f.pay(alice, 100, models.TransactionSuccess, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	f.pay(alice, 50, models.TransactionPending, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))

	svc := NewStatsService(db, cache.NewMemoryCache(), time.Hour)
	raw, err := svc.RevenueStats(context.Background(), StatsParams{
		Period: models.PeriodMonthly,
		Start:  day("2024-01-01"),
		End:    day("2024-03-01"),
	})
	require.NoError(t, err)

	var stats []RevenueStat
	require.NoError(t, json.Unmarshal(raw, &stats))
	require.Len(t, stats, 3)
	assert.Equal(t, "2024-01-01", stats[0].PeriodStart)
	assert.Equal(t, "2024-01-31", stats[0].PeriodEnd)
	assert.Equal(t, 100.0, stats[0].TotalRevenue)
	assert.Zero(t, stats[1].TotalRevenue)
	assert.Zero(t, stats[2].TotalRevenue)
}

func TestMemberStatsBuckets(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	alice := f.member("alice")
	bob := f.member("bob")
	f.joined(alice, "2024-01-03", "")
	f.joined(bob, "2023-12-01", "2024-01-10")

	svc := NewStatsService(db, nil, time.Hour)
	raw, err := svc.MemberStats(context.Background(), StatsParams{
		Period: models.PeriodWeekly,
		Start:  day("2024-01-01"),
		End:    day("2024-01-14"),
	})
	require.NoError(t, err)

	var stats []MemberStat
	require.NoError(t, json.Unmarshal(raw, &stats))
	require.Len(t, stats, 2)

	assert.Equal(t, MemberStat{
		PeriodStart: "2024-01-01", PeriodEnd: "2024-01-08",
		MemberCount: 2, NewMembers: 1, CancelledMembers: 0,
	}, stats[0])
	assert.Equal(t, MemberStat{
		PeriodStart: "2024-01-08", PeriodEnd: "2024-01-15",
		MemberCount: 2, NewMembers: 0, CancelledMembers: 1,
	}, stats[1])
}

func TestStatsCachedWithinTTL(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	f.joined(f.member("alice"), "2024-01-03", "")

	svc := NewStatsService(db, cache.NewMemoryCache(), time.Hour)
	p := StatsParams{Period: models.PeriodMonthly, Start: day("2024-01-01"), End: day("2024-02-01")}

	first, err := svc.MemberStats(context.Background(), p)
	require.NoError(t, err)

	f.joined(f.member("bob"), "2024-01-05", "")

	second, err := svc.MemberStats(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// kỳ khác là key khác nên tính lại
	p.Period = models.PeriodWeekly
	third, err := svc.MemberStats(context.Background(), p)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestClassStatsIncludeDeletedClasses(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	yoga := f.class("Yoga", 5)
	old := f.class("Aerobic", 5)
	f.enroll(f.member("alice"), yoga)
	f.enroll(f.member("bob"), old)
	require.NoError(t, db.Delete(old).Error)

	today := dateOnly(time.Now().UTC())
	svc := NewStatsService(db, nil, time.Hour)
	raw, err := svc.ClassStats(context.Background(), StatsParams{
		Period: models.PeriodMonthly,
		Start:  today.AddDate(0, 0, -7),
		End:    today,
	})
	require.NoError(t, err)

	var stats []ClassStat
	require.NoError(t, json.Unmarshal(raw, &stats))
	require.Len(t, stats, 2)
	for _, s := range stats {
		assert.EqualValues(t, 1, s.TotalEnrollments, s.ClassName)
	}
}

func TestCacheKeyFormat(t *testing.T) {
	p := StatsParams{Period: models.PeriodYearly, Start: day("2023-01-01"), End: day("2024-01-01")}
	assert.Equal(t, "member_stats_yearly_2023-01-01_2024-01-01", p.CacheKey(MetricMembers))
	assert.Equal(t, "revenue_stats_yearly_2023-01-01_2024-01-01", p.CacheKey(MetricRevenue))
}

func TestSnapshotJobPersistsRows(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	cls := f.class("Yoga", 4)
	alice := f.member("alice")
	f.enroll(alice, cls)
	f.pay(alice, 200, models.TransactionSuccess, time.Now().UTC().Add(-48*time.Hour))

	job := NewSnapshotJob(db, NewStatsService(db, nil, time.Hour), models.PeriodWeekly)
	rows, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].ClassID)
	assert.Equal(t, 200.0, rows[0].TotalRevenue)
	require.NotNil(t, rows[1].ClassID)
	assert.Equal(t, cls.ID, *rows[1].ClassID)
	assert.EqualValues(t, 1, rows[1].EnrollmentCount)
	assert.Equal(t, 25.0, rows[1].AttendanceRate)

	saved, err := NewStatsService(db, nil, time.Hour).Snapshots(context.Background(), models.PeriodWeekly, 0)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSnapshotJobSkipsPeriodAlreadySaved(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	f.class("Yoga", 4)

	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	job := NewSnapshotJob(db, NewStatsService(db, nil, time.Hour), models.PeriodWeekly)
	job.now = func() time.Time { return now }

	rows, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// khởi động lại trong cùng ngày
	now = now.Add(3 * time.Hour)
	rows, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)

	// lớp mới mở sau lần chạy trước vẫn được ghi
	late := f.class("Pilates", 10)
	rows, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ClassID)
	assert.Equal(t, late.ID, *rows[0].ClassID)

	var total int64
	require.NoError(t, db.Model(&models.Statistic{}).Count(&total).Error)
	assert.EqualValues(t, 3, total)
}

func TestExportStatsWorkbook(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	f.class("Yoga", 5)

	svc := NewStatsService(db, cache.NewMemoryCache(), time.Hour)
	p := StatsParams{Period: models.PeriodMonthly, Start: day("2024-01-01"), End: day("2024-02-01")}
	buf, err := svc.ExportStats(context.Background(), "classes", p)
	require.NoError(t, err)
	// xlsx là file zip
	assert.Equal(t, "PK", string(buf.Bytes()[:2]))
	assert.Equal(t, "class_stats_monthly_2024-01-01_2024-02-01.xlsx", ExportFilename("classes", p))

	_, err = svc.ExportStats(context.Background(), "unknown", p)
	require.Error(t, err)
	assert.Equal(t, 404, AsError(err).Status())
}
