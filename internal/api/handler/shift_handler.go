package handler

import (
	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// CreateShift 创建班次，quantity>1 时批量创建（全部成功或全部失败）
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.CreateShift(c.Request.Context(), actor, &req)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.Created(c, result)
}

// ListShifts 按排班周查询班次
// GET /api/v1/shifts?rota_id=xxx
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}
