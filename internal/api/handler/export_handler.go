package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimesheets 导出工时单（筛选条件同列表接口）
// GET /api/v1/export/timesheets?location_id=xxx&period_start=...&period_end=...
func (h *ExportHandler) ExportTimesheets(c *gin.Context) {
	var req dto.TimesheetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportTimesheets(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportMyShifts 导出本人班次为 iCalendar，可直接导入日历客户端
// GET /api/v1/export/my-shifts?location_id=xxx&from=...&to=...
func (h *ExportHandler) ExportMyShifts(c *gin.Context) {
	var req dto.ShiftCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	body, filename, err := h.exportSvc.ExportShiftCalendar(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, icsContentType, body)
}

// attachment 以附件形式输出文件
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoTimesheets):
		response.NotFound(c, 25101, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 25102, err.Error())
	case errors.Is(err, service.ErrInvalidCalendarRange):
		response.BadRequest(c, 25103, err.Error())
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 25104, err.Error())
	default:
		respondByKind(c, err)
	}
}
