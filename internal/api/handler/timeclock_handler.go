package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// TimeclockHandler 打卡模块 HTTP 处理器
type TimeclockHandler struct {
	timeclockSvc service.TimeclockService
}

// NewTimeclockHandler 创建 TimeclockHandler
func NewTimeclockHandler(timeclockSvc service.TimeclockService) *TimeclockHandler {
	return &TimeclockHandler{timeclockSvc: timeclockSvc}
}

// RecordEvent 记录打卡事件
// POST /api/v1/timeclock/events
func (h *TimeclockHandler) RecordEvent(c *gin.Context) {
	var req dto.RecordClockEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	event, err := h.timeclockSvc.Record(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleTimeclockError(c, err)
		return
	}

	response.Created(c, event)
}

// ListEvents 打卡记录分页列表
// GET /api/v1/timeclock/events
func (h *TimeclockHandler) ListEvents(c *gin.Context) {
	var req dto.ClockEventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, total, err := h.timeclockSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleTimeclockError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

func (h *TimeclockHandler) handleTimeclockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidClockKind):
		response.BadRequest(c, 23101, err.Error())
	case errors.Is(err, service.ErrClockUserNotFound):
		response.NotFound(c, 23102, err.Error())
	case errors.Is(err, service.ErrClockForOthers):
		response.Forbidden(c, 23103, err.Error())
	case errors.Is(err, service.ErrInvalidClockRange):
		response.BadRequest(c, 23104, err.Error())
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 23105, err.Error())
	default:
		respondByKind(c, err)
	}
}
