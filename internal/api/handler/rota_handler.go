package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	pkgerrors "hospitality-ops/backend/pkg/errors"
	"hospitality-ops/backend/pkg/response"
)

// RotaHandler 排班周模块 HTTP 处理器
type RotaHandler struct {
	rotaSvc service.RotaService
}

// NewRotaHandler 创建 RotaHandler
func NewRotaHandler(rotaSvc service.RotaService) *RotaHandler {
	return &RotaHandler{rotaSvc: rotaSvc}
}

// ListRotas 排班周分页列表
// GET /api/v1/rotas
func (h *RotaHandler) ListRotas(c *gin.Context) {
	var req dto.RotaListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, total, err := h.rotaSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRota 排班周详情（含班次）
// GET /api/v1/rotas/:id
func (h *RotaHandler) GetRota(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排班周ID不能为空")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rota, err := h.rotaSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.OK(c, rota)
}

// CreateRota 显式创建排班周
// POST /api/v1/rotas
func (h *RotaHandler) CreateRota(c *gin.Context) {
	var req dto.CreateRotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rota, err := h.rotaSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.Created(c, rota)
}

// UpdateRotaStatus 排班周状态迁移（发布 / 锁定 / 退回草稿）
// PUT /api/v1/rotas/:id/status
func (h *RotaHandler) UpdateRotaStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "排班周ID不能为空")
		return
	}

	var req dto.UpdateRotaStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rota, err := h.rotaSvc.UpdateStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		handleSchedulingError(c, err)
		return
	}

	response.OK(c, rota)
}

// handleSchedulingError 排班周 / 班次共用的业务错误映射（21xxx）
func handleSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRotaNotFound):
		response.NotFound(c, 21101, err.Error())
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 21102, err.Error())
	case errors.Is(err, service.ErrShiftOutsideRotaWeek):
		response.BadRequest(c, 21103, err.Error())
	case errors.Is(err, service.ErrInvalidShiftWindow):
		response.BadRequest(c, 21104, err.Error())
	case errors.Is(err, service.ErrRotaOrLocationRequired):
		response.BadRequest(c, 21105, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		response.BadRequest(c, 21106, err.Error())
	case errors.Is(err, service.ErrRotaLocked):
		response.BadRequest(c, 21107, err.Error())
	case errors.Is(err, service.ErrRotaAlreadyExists):
		response.Conflict(c, 21108, err.Error())
	case errors.Is(err, service.ErrRotaStatusTransition):
		response.BadRequest(c, 21109, err.Error())
	case errors.Is(err, service.ErrJobTagNotFound):
		response.NotFound(c, 21110, err.Error())
	case errors.Is(err, service.ErrOrgUnresolvable):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 21111, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 21112, err.Error())
	case errors.Is(err, service.ErrInvalidWeekStart):
		response.BadRequest(c, 21113, err.Error())
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 21114, err.Error())
	default:
		respondByKind(c, err)
	}
}
