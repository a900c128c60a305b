package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// TimesheetHandler 工时单模块 HTTP 处理器
type TimesheetHandler struct {
	timesheetSvc service.TimesheetService
}

// NewTimesheetHandler 创建 TimesheetHandler
func NewTimesheetHandler(timesheetSvc service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetSvc: timesheetSvc}
}

// ════════════════════════════════════════════════════════════
// GenerateTimesheet：生成或重算工时单
// POST /api/v1/timesheets
// 新建返回 201，重算已有工时单返回 200；已审批/锁定且未带 force 返回 409
// ════════════════════════════════════════════════════════════
func (h *TimesheetHandler) GenerateTimesheet(c *gin.Context) {
	var req dto.GenerateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	sheet, created, err := h.timesheetSvc.GenerateOrUpdate(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	if created {
		response.Created(c, sheet)
		return
	}
	response.OK(c, sheet)
}

// ListTimesheets 工时单分页列表
// GET /api/v1/timesheets
func (h *TimesheetHandler) ListTimesheets(c *gin.Context) {
	var req dto.TimesheetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, total, err := h.timesheetSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTimesheet 工时单详情
// GET /api/v1/timesheets/:id
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	h.byID(c, h.timesheetSvc.Get)
}

// ApproveTimesheet 审批工时单（draft → approved）
// POST /api/v1/timesheets/:id/approve
func (h *TimesheetHandler) ApproveTimesheet(c *gin.Context) {
	h.byID(c, h.timesheetSvc.Approve)
}

// LockTimesheet 锁定工时单（approved → locked）
// POST /api/v1/timesheets/:id/lock
func (h *TimesheetHandler) LockTimesheet(c *gin.Context) {
	h.byID(c, h.timesheetSvc.Lock)
}

type timesheetAction func(ctx context.Context, actor service.Actor, id string) (*dto.TimesheetResponse, error)

func (h *TimesheetHandler) byID(c *gin.Context, action timesheetAction) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	sheet, err := action(c.Request.Context(), actor, id)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, sheet)
}

func (h *TimesheetHandler) handleTimesheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 24101, err.Error())
	case errors.Is(err, service.ErrTimesheetLocked):
		response.Conflict(c, 24102, err.Error())
	case errors.Is(err, service.ErrTimesheetNotFound):
		response.NotFound(c, 24103, err.Error())
	case errors.Is(err, service.ErrTimesheetUserNotFound):
		response.NotFound(c, 24104, err.Error())
	case errors.Is(err, service.ErrTimesheetStatusTransition):
		response.Conflict(c, 24105, err.Error())
	case errors.Is(err, service.ErrSelfApproval):
		response.BadRequest(c, 24106, err.Error())
	case errors.Is(err, service.ErrTimesheetForbidden):
		response.Forbidden(c, 24107, err.Error())
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 24108, err.Error())
	default:
		respondByKind(c, err)
	}
}
