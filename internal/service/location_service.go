package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── 门店模块业务错误 ──

var (
	ErrLocationNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "门店不存在")
	ErrInvalidTimezone  = pkgerrors.New(pkgerrors.ErrValidation, "时区无效，应为 IANA 名称（如 Europe/London）")
)

// LocationService 门店业务接口
type LocationService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateLocationRequest) (*dto.LocationResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.LocationResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.LocationResponse, error)
}

type locationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(repo *repository.Repository, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *locationService) Create(ctx context.Context, actor Actor, req *dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, ErrInvalidTimezone
	}

	loc := &model.Location{
		OrgID:    actor.OrgID,
		Name:     req.Name,
		Address:  req.Address,
		Timezone: tz,
		IsActive: true,
	}
	loc.CreatedBy = model.StrPtr(actor.UserID)
	loc.UpdatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Location.Create(ctx, loc); err != nil {
		s.logger.Error("创建门店失败", zap.Error(err))
		return nil, err
	}

	resp := toLocationResponse(loc)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *locationService) GetByID(ctx context.Context, actor Actor, id string) (*dto.LocationResponse, error) {
	loc, err := loadLocation(ctx, s.repo, actor, id)
	if err != nil {
		if !errors.Is(err, ErrLocationNotFound) {
			s.logger.Error("查询门店失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toLocationResponse(loc)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *locationService) List(ctx context.Context, actor Actor) ([]dto.LocationResponse, error) {
	locations, err := s.repo.Location.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		s.logger.Error("列出门店失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		result = append(result, toLocationResponse(&locations[i]))
	}
	return result, nil
}

// loadLocation 查询调用者组织下的门店，跨租户视为不存在
func loadLocation(ctx context.Context, repo *repository.Repository, actor Actor, id string) (*model.Location, error) {
	loc, err := repo.Location.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	if !actor.owns(loc.OrgID) {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}

func toLocationResponse(l *model.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:        l.LocationID,
		OrgID:     l.OrgID,
		Name:      l.Name,
		Address:   l.Address,
		Timezone:  l.Timezone,
		IsActive:  l.IsActive,
		CreatedAt: formatTime(l.CreatedAt),
	}
}
