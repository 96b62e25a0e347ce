package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = map[Metric][]string{
	MetricMembers: {"period_start", "period_end", "member_count", "new_members", "cancelled_members"},
	MetricRevenue: {"period_start", "period_end", "total_revenue"},
	MetricClasses: {"class_id", "class_name", "total_enrollments"},
}

func metricOf(name string) (Metric, bool) {
	switch name {
	case "members", string(MetricMembers):
		return MetricMembers, true
	case "revenue":
		return MetricRevenue, true
	case "classes", string(MetricClasses):
		return MetricClasses, true
	}
	return "", false
}

// ExportStats xuất một loại thống kê ra file xlsx, dùng chung dữ liệu đã cache với API JSON.
func (s *StatsService) ExportStats(ctx context.Context, name string, p StatsParams) (*bytes.Buffer, error) {
	metric, ok := metricOf(name)
	if !ok {
		return nil, NotFound("Unknown statistic: " + name)
	}
	data, err := s.Metric(ctx, name, p)
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	switch metric {
	case MetricMembers:
		var list []MemberStat
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, Internal("Cannot decode statistics", err)
		}
		for _, r := range list {
			rows = append(rows, []interface{}{r.PeriodStart, r.PeriodEnd, r.MemberCount, r.NewMembers, r.CancelledMembers})
		}
	case MetricRevenue:
		var list []RevenueStat
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, Internal("Cannot decode statistics", err)
		}
		for _, r := range list {
			rows = append(rows, []interface{}{r.PeriodStart, r.PeriodEnd, r.TotalRevenue})
		}
	case MetricClasses:
		var list []ClassStat
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, Internal("Cannot decode statistics", err)
		}
		for _, r := range list {
			rows = append(rows, []interface{}{r.ClassID.String(), r.ClassName, r.TotalEnrollments})
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := string(metric)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, Internal("Cannot build workbook", err)
	}
	header := make([]interface{}, 0, len(exportHeaders[metric]))
	for _, h := range exportHeaders[metric] {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, Internal("Cannot build workbook", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, Internal("Cannot build workbook", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, Internal("Cannot build workbook", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, Internal("Cannot write workbook", err)
	}
	return buf, nil
}

// ExportFilename là tên file gợi ý cho header Content-Disposition.
func ExportFilename(name string, p StatsParams) string {
	m, _ := metricOf(name)
	return fmt.Sprintf("%s_stats_%s_%s_%s.xlsx", m, p.Period, p.Start.Format(DateLayout), p.End.Format(DateLayout))
}
