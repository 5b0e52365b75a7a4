package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lost-university/backend/pkg/semester"
)

// ── 测试辅助 ──

func setupTestExportService() ExportService {
	store := newTestStore(testModules()...)
	cache := newMemorySessionCache(100, time.Hour)
	plans := NewPlanService(store, cache, "23", fixedClock(2024, time.March), nil, zap.NewNop())
	return NewExportService(plans, store, zap.NewNop())
}

// ── ExportPlan 测试 ──

func TestExportService_XLSX(t *testing.T) {
	svc := setupTestExportService()

	buf, filename, contentType, err := svc.ExportPlan(context.Background(), "s1", "#/plan/AD1_DBS-AD2?startSemester=HS23", "")
	if err != nil {
		t.Fatalf("ExportPlan 应成功: %v", err)
	}
	if filename != "studienplan.xlsx" || !strings.Contains(contentType, "spreadsheetml") {
		t.Errorf("文件名或类型错误: %s %s", filename, contentType)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应能被读取: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Studienplan", "A1")
	if header != "1. Semester (HS23)" {
		t.Errorf("表头错误: %q", header)
	}
	first, _ := f.GetCellValue("Studienplan", "A2")
	if !strings.HasPrefix(first, "AD1 ") {
		t.Errorf("第一个模块错误: %q", first)
	}
	total, _ := f.GetCellValue("Studienplan", "A4")
	if total != "ECTS: 8" {
		t.Errorf("学分合计错误: %q", total)
	}
	second, _ := f.GetCellValue("Studienplan", "B4")
	if second != "ECTS: 4" {
		t.Errorf("第二学期学分合计错误: %q", second)
	}
}

func TestExportService_ICS(t *testing.T) {
	svc := setupTestExportService()

	buf, filename, _, err := svc.ExportPlan(context.Background(), "s1", "#/plan/AD1-AD2-DBS?startSemester=HS23", FormatICS)
	if err != nil {
		t.Fatalf("ExportPlan 应成功: %v", err)
	}
	if filename != "studienplan.ics" {
		t.Errorf("文件名错误: %s", filename)
	}

	content := buf.String()
	if n := strings.Count(content, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("期望 3 个日程，实际 %d", n)
	}
	for _, date := range []string{"20230701", "20240101", "20240701"} {
		if !strings.Contains(content, date) {
			t.Errorf("日历中缺少日期 %s", date)
		}
	}
}

func TestExportService_ICS_RequiresStart(t *testing.T) {
	svc := setupTestExportService()

	_, _, _, err := svc.ExportPlan(context.Background(), "s1", "#/plan/AD1", FormatICS)
	if !errors.Is(err, ErrExportNoStart) {
		t.Errorf("期望 ErrExportNoStart，实际: %v", err)
	}
}

func TestExportService_Errors(t *testing.T) {
	svc := setupTestExportService()
	ctx := context.Background()

	if _, _, _, err := svc.ExportPlan(ctx, "s1", "#/plan/AD1", "pdf"); !errors.Is(err, ErrExportFormat) {
		t.Errorf("期望 ErrExportFormat，实际: %v", err)
	}
	if _, _, _, err := svc.ExportPlan(ctx, "s1", "#/plan/--", FormatXLSX); !errors.Is(err, ErrExportEmptyPlan) {
		t.Errorf("期望 ErrExportEmptyPlan，实际: %v", err)
	}
	if _, _, _, err := svc.ExportPlan(ctx, "fresh", "", FormatXLSX); !errors.Is(err, ErrNoPlan) {
		t.Errorf("期望 ErrNoPlan，实际: %v", err)
	}
}

func TestTermPeriod(t *testing.T) {
	from, to := TermPeriod(semester.MustParse("FS24"))
	if from.Month() != time.January || to.Month() != time.July || from.Year() != 2024 {
		t.Errorf("春季学期区间错误: %v - %v", from, to)
	}
	from, to = TermPeriod(semester.MustParse("HS24"))
	if from.Month() != time.July || to.Year() != 2025 || to.Month() != time.January {
		t.Errorf("秋季学期区间错误: %v - %v", from, to)
	}
}
