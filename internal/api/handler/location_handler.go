package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// LocationHandler 门店模块 HTTP 处理器
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// ListLocations 获取本组织门店列表
// GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	locations, err := h.locationSvc.List(c.Request.Context(), actor)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": locations})
}

// GetLocation 获取门店详情
// GET /api/v1/locations/:id
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "门店ID不能为空")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, location)
}

// CreateLocation 创建门店
// POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.Created(c, location)
}

func (h *LocationHandler) handleLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 20101, "门店不存在")
	case errors.Is(err, service.ErrInvalidTimezone):
		response.BadRequest(c, 20102, err.Error())
	default:
		respondByKind(c, err)
	}
}
