package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// AssignmentHandler 班次指派 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// CreateAssignment 将员工指派到班次
// POST /api/v1/shifts/:id/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Create(c.Request.Context(), actor, shiftID, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateAssignmentStatus 更新指派状态；员工只能接受或拒绝自己的指派
// PUT /api/v1/assignments/:id/status
func (h *AssignmentHandler) UpdateAssignmentStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "指派ID不能为空")
		return
	}

	var req dto.UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.UpdateStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 22101, err.Error())
	case errors.Is(err, service.ErrAssignmentExists):
		response.Conflict(c, 22102, err.Error())
	case errors.Is(err, service.ErrAssignmentUserNotFound):
		response.NotFound(c, 22103, err.Error())
	case errors.Is(err, service.ErrAssignmentForbidden):
		response.Forbidden(c, 22104, err.Error())
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 22105, err.Error())
	case errors.Is(err, service.ErrRotaLocked):
		response.BadRequest(c, 22106, err.Error())
	default:
		respondByKind(c, err)
	}
}
