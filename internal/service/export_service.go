package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/plan"
	"lost-university/backend/pkg/semester"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyPlan    = errors.New("计划中没有模块")
	ErrExportNoStart      = errors.New("导出日历需要设置入学学期")
	ErrExportFormat       = errors.New("不支持的导出格式")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 导出格式
const (
	FormatXLSX = "xlsx"
	FormatICS  = "ics"
)

// ExportService 导出业务接口
//
// 格式：
//   - xlsx：每个学期一列，列中为模块，最后一行为学分合计
//   - ics：每个学期一个全天日程，描述中列出模块
type ExportService interface {
	// ExportPlan 返回文件内容、建议文件名与 Content-Type
	ExportPlan(ctx context.Context, sessionID, text, format string) (*bytes.Buffer, string, string, error)
}

type exportService struct {
	plans  PlanService
	store  *catalog.Store
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(plans PlanService, store *catalog.Store, logger *zap.Logger) ExportService {
	return &exportService{plans: plans, store: store, logger: logger}
}

func (s *exportService) ExportPlan(ctx context.Context, sessionID, text, format string) (*bytes.Buffer, string, string, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatICS {
		return nil, "", "", ErrExportFormat
	}

	res, err := s.plans.Resolve(ctx, sessionID, text)
	if err != nil {
		return nil, "", "", err
	}
	if len(res.Plan.ModuleIDs()) == 0 {
		return nil, "", "", ErrExportEmptyPlan
	}

	snap := s.store.Snapshot()
	if format == FormatICS {
		buf, err := s.exportICS(res.Plan, snap)
		if err != nil {
			return nil, "", "", err
		}
		return buf, "studienplan.ics", "text/calendar; charset=utf-8", nil
	}

	buf, err := s.exportXLSX(res.Plan, snap)
	if err != nil {
		return nil, "", "", err
	}
	return buf, "studienplan.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}

// ════════════════════════ xlsx ════════════════════════
//
// | 1. Semester (HS23) | 2. Semester (FS24) | ...
// | AD1 Algorithmen 1  | DBS Datenbanken    |
// | ...                |                    |
// | ECTS: 12           | ECTS: 8            |

func (s *exportService) exportXLSX(p *plan.Plan, snap *catalog.Snapshot) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Studienplan"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	maxRows := 0
	for _, sem := range p.Semesters {
		if len(sem.ModuleIDs) > maxRows {
			maxRows = len(sem.ModuleIDs)
		}
	}
	totalRow := maxRows + 2

	for i, sem := range p.Semesters {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, 28)

		header := fmt.Sprintf("%d. Semester", sem.Number)
		if sem.Name != "" {
			header += " (" + sem.Name + ")"
		}
		f.SetCellValue(sheetName, cell(col, 1), header)
		f.SetCellStyle(sheetName, cell(col, 1), cell(col, 1), headerStyle)

		for j, id := range sem.ModuleIDs {
			label := id
			if m, ok := snap.FindByID(id); ok {
				label = fmt.Sprintf("%s %s (%g)", id, m.Name, m.ECTS)
			}
			f.SetCellValue(sheetName, cell(col, j+2), label)
		}
		f.SetCellValue(sheetName, cell(col, totalRow), fmt.Sprintf("ECTS: %g", sumECTS(snap, sem.ModuleIDs, nil)))
		f.SetCellStyle(sheetName, cell(col, totalRow), cell(col, totalRow), headerStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ════════════════════════ ics ════════════════════════

func (s *exportService) exportICS(p *plan.Plan, snap *catalog.Snapshot) (*bytes.Buffer, error) {
	if p.StartSemester == nil {
		return nil, ErrExportNoStart
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//lost-university//studienplan//DE")

	stamp := time.Now().UTC()
	for _, sem := range p.Semesters {
		info, _ := p.SemesterInfo(sem.Number)
		from, to := TermPeriod(info)

		evt := cal.AddEvent(fmt.Sprintf("semester-%d-%s@lost-university", sem.Number, info.String()))
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(from)
		evt.SetAllDayEndAt(to)
		evt.SetSummary(fmt.Sprintf("%d. Semester (%s), %g ECTS", sem.Number, info.String(), sumECTS(snap, sem.ModuleIDs, nil)))

		var desc bytes.Buffer
		for _, id := range sem.ModuleIDs {
			if m, ok := snap.FindByID(id); ok {
				fmt.Fprintf(&desc, "%s %s\n", id, m.Name)
			} else {
				fmt.Fprintf(&desc, "%s\n", id)
			}
		}
		evt.SetDescription(desc.String())
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入日历失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// TermPeriod 学期的日历区间 [from, to)，与 semester.At 的切换月份一致：
// 春季学期 1 月至 6 月，秋季学期 7 月至 12 月。
func TermPeriod(info semester.Info) (time.Time, time.Time) {
	if info.IsSpringTerm {
		return time.Date(info.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(info.Year, time.July, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(info.Year, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(info.Year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
