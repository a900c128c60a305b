package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/pkg/calendar"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// maxExportRows 单次导出的工时单上限
const maxExportRows = 5000

// ── 导出模块业务错误 ──

var (
	ErrExportNoTimesheets = pkgerrors.New(pkgerrors.ErrNotFound, "筛选条件下没有工时单")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportTimesheets 按列表筛选条件导出工时单为 Excel
	ExportTimesheets(ctx context.Context, actor Actor, req *dto.TimesheetListRequest) (*bytes.Buffer, string, error)
	// ExportShiftCalendar 导出调用者本人的班次为 .ics
	ExportShiftCalendar(ctx context.Context, actor Actor, req *dto.ShiftCalendarRequest) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportTimesheets：导出工时单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "工时单"
//   - 第 1 行为标题，第 2 行为表头，之后每行一张工时单
//   - 时长列以小时呈现，保留两位小数
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportTimesheets(ctx context.Context, actor Actor, req *dto.TimesheetListRequest) (*bytes.Buffer, string, error) {
	filter, err := timesheetFilter(actor, req)
	if err != nil {
		return nil, "", err
	}

	sheets, _, err := s.repo.Timesheet.List(ctx, filter, 0, maxExportRows)
	if err != nil {
		s.logger.Error("查询导出工时单失败", zap.Error(err))
		return nil, "", err
	}
	if len(sheets) == 0 {
		return nil, "", ErrExportNoTimesheets
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工时单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"员工", "门店", "周期开始", "周期结束", "常规工时(h)", "加班工时(h)", "休息(h)", "计划工时(h)", "差异(h)", "出勤天数", "状态"}

	f.SetColWidth(sheetName, "A", "B", 18)
	f.SetColWidth(sheetName, "C", "D", 12)
	f.SetColWidth(sheetName, colName(4), colName(len(headers)-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	hoursStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00

	// 标题行
	f.SetCellValue(sheetName, "A1", exportTitle(req))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range sheets {
		ts := &sheets[i]
		totals := ts.Totals.Data()

		values := []interface{}{
			userName(ts),
			locationName(ts),
			calendar.FormatDate(time.Time(ts.PeriodStart)),
			calendar.FormatDate(time.Time(ts.PeriodEnd)),
			minutesToHours(totals.RegularMinutes),
			minutesToHours(totals.OvertimeMinutes),
			minutesToHours(totals.BreakMinutes),
			minutesToHours(totals.PlannedMinutes),
			minutesToHours(totals.VarianceMinutes),
			totals.DaysWorked,
			ts.Status,
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		f.SetCellStyle(sheetName, cell(colName(4), row), cell(colName(8), row), hoursStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出工时单", zap.Int("rows", len(sheets)), zap.String("operator", actor.UserID))
	return buf, exportFilename(req), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func minutesToHours(m int) float64 {
	return float64(m) / 60
}

func userName(ts *model.Timesheet) string {
	if ts.User != nil {
		return ts.User.Name
	}
	return ts.UserID
}

func locationName(ts *model.Timesheet) string {
	if ts.Location != nil {
		return ts.Location.Name
	}
	return ts.LocationID
}

func exportTitle(req *dto.TimesheetListRequest) string {
	if req.PeriodStart != "" || req.PeriodEnd != "" {
		return fmt.Sprintf("工时单 %s ~ %s", req.PeriodStart, req.PeriodEnd)
	}
	return "工时单"
}

func exportFilename(req *dto.TimesheetListRequest) string {
	if req.PeriodStart != "" && req.PeriodEnd != "" {
		return fmt.Sprintf("timesheets_%s_%s.xlsx", req.PeriodStart, req.PeriodEnd)
	}
	return "timesheets.xlsx"
}
