package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/pkg/calendar"
	"hospitality-ops/backend/pkg/database"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── 排班周模块业务错误 ──

var (
	ErrRotaNotFound         = pkgerrors.New(pkgerrors.ErrNotFound, "排班周不存在")
	ErrShiftOutsideRotaWeek = pkgerrors.New(pkgerrors.ErrValidation, "班次开始时间不在排班周内")
	ErrRotaLocked           = pkgerrors.New(pkgerrors.ErrValidation, "排班周已锁定，不可再添加班次")
	ErrRotaAlreadyExists    = pkgerrors.New(pkgerrors.ErrConflict, "该门店本周已存在排班周")
	ErrRotaStatusTransition = pkgerrors.New(pkgerrors.ErrValidation, "排班周状态不允许此迁移")
	ErrOrgUnresolvable      = pkgerrors.New(pkgerrors.ErrDataIntegrity, "无法确定门店所属组织")
	ErrInvalidWeekStart     = pkgerrors.New(pkgerrors.ErrValidation, "week_start_date 格式无效")
)

// RotaService 排班周业务接口
type RotaService interface {
	// ResolveOrCreateRota 返回门店在 shiftStartAt 所在周的排班周，不存在则创建（草稿）。
	// 并发调用同一 (门店, 周) 只会产生一条记录，所有调用者得到同一排班周。
	ResolveOrCreateRota(ctx context.Context, actor Actor, locationID string, shiftStartAt time.Time) (*model.Rota, error)
	Create(ctx context.Context, actor Actor, req *dto.CreateRotaRequest) (*dto.RotaResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.RotaResponse, error)
	List(ctx context.Context, actor Actor, req *dto.RotaListRequest) ([]dto.RotaResponse, int64, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req *dto.UpdateRotaStatusRequest) (*dto.RotaResponse, error)
}

type rotaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotaService 创建 RotaService 实例
func NewRotaService(repo *repository.Repository, logger *zap.Logger) RotaService {
	return &rotaService{repo: repo, logger: logger}
}

// ValidateShiftWithinRotaWeek 校验班次开始日期落在 [rotaWeekStart, rotaWeekStart+7d) 内
func ValidateShiftWithinRotaWeek(shiftStartAt, rotaWeekStart time.Time) error {
	if !calendar.WithinWeek(shiftStartAt, rotaWeekStart) {
		return ErrShiftOutsideRotaWeek
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ResolveOrCreateRota：按门店 + 周解析或创建排班周
// ════════════════════════════════════════════════════════════

func (s *rotaService) ResolveOrCreateRota(ctx context.Context, actor Actor, locationID string, shiftStartAt time.Time) (*model.Rota, error) {
	rota, created, err := resolveOrCreateRota(ctx, s.repo, actor, locationID, shiftStartAt)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("自动创建排班周",
			zap.String("rota_id", rota.RotaID),
			zap.String("location_id", locationID),
			zap.String("week_start", calendar.FormatDate(rota.WeekStart())),
		)
	}
	return rota, nil
}

// resolveOrCreateRota 可在事务内调用（repo 为事务绑定的聚合）。
//
// 插入使用 ON CONFLICT DO NOTHING：并发插入的失败方不会中止事务，
// 未插入（或驱动仍报唯一约束冲突）时重新查询并返回胜出方。
func resolveOrCreateRota(ctx context.Context, repo *repository.Repository, actor Actor, locationID string, shiftStartAt time.Time) (*model.Rota, bool, error) {
	weekStart := calendar.WeekStart(shiftStartAt)

	// 1. 已存在直接返回
	rota, err := repo.Rota.GetByLocationAndWeek(ctx, locationID, weekStart)
	if err == nil {
		if !actor.owns(rota.OrgID) {
			return nil, false, ErrLocationNotFound
		}
		return rota, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// 2. 解析门店所属组织
	loc, err := repo.Location.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrLocationNotFound
		}
		return nil, false, err
	}
	if loc.OrgID == "" {
		return nil, false, ErrOrgUnresolvable
	}
	if !actor.owns(loc.OrgID) {
		return nil, false, ErrLocationNotFound
	}

	// 3. 插入草稿排班周
	rota = &model.Rota{
		OrgID:         loc.OrgID,
		LocationID:    loc.LocationID,
		WeekStartDate: datatypes.Date(weekStart),
		Status:        model.RotaStatusDraft,
		Version:       1,
	}
	rota.CreatedBy = model.StrPtr(actor.UserID)
	rota.UpdatedBy = model.StrPtr(actor.UserID)

	created, err := repo.Rota.CreateIfAbsent(ctx, rota)
	if err != nil && !database.IsUniqueViolation(err) {
		return nil, false, err
	}
	if created {
		return rota, true, nil
	}

	// 4. 并发插入的胜出方
	winner, err := repo.Rota.GetByLocationAndWeek(ctx, locationID, weekStart)
	if err != nil {
		return nil, false, err
	}
	return winner, false, nil
}

// ════════════════════════════════════════════════════════════
// Create：显式创建排班周
// ════════════════════════════════════════════════════════════

func (s *rotaService) Create(ctx context.Context, actor Actor, req *dto.CreateRotaRequest) (*dto.RotaResponse, error) {
	day, err := calendar.ParseDate(req.WeekStartDate)
	if err != nil {
		return nil, ErrInvalidWeekStart
	}
	weekStart := calendar.WeekStart(day)

	loc, err := loadLocation(ctx, s.repo, actor, req.LocationID)
	if err != nil {
		if !errors.Is(err, ErrLocationNotFound) {
			s.logger.Error("查询门店失败", zap.Error(err))
		}
		return nil, err
	}

	rota := &model.Rota{
		OrgID:         loc.OrgID,
		LocationID:    loc.LocationID,
		WeekStartDate: datatypes.Date(weekStart),
		Status:        model.RotaStatusDraft,
		LaborBudget:   req.LaborBudget,
		Notes:         req.Notes,
		Version:       1,
	}
	rota.CreatedBy = model.StrPtr(actor.UserID)
	rota.UpdatedBy = model.StrPtr(actor.UserID)

	created, err := s.repo.Rota.CreateIfAbsent(ctx, rota)
	if err != nil && !database.IsUniqueViolation(err) {
		s.logger.Error("创建排班周失败", zap.Error(err))
		return nil, err
	}
	if !created {
		return nil, ErrRotaAlreadyExists
	}

	resp := toRotaResponse(rota)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Get / List
// ════════════════════════════════════════════════════════════

func (s *rotaService) Get(ctx context.Context, actor Actor, id string) (*dto.RotaResponse, error) {
	rota, err := s.repo.Rota.GetWithShifts(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRotaNotFound
		}
		s.logger.Error("查询排班周失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !actor.owns(rota.OrgID) {
		return nil, ErrRotaNotFound
	}

	resp := toRotaResponse(rota)
	return &resp, nil
}

func (s *rotaService) List(ctx context.Context, actor Actor, req *dto.RotaListRequest) ([]dto.RotaResponse, int64, error) {
	filter := repository.RotaFilter{
		OrgID:      actor.OrgID,
		LocationID: req.LocationID,
		Status:     req.Status,
	}
	if req.WeekStart != "" {
		day, err := calendar.ParseDate(req.WeekStart)
		if err != nil {
			return nil, 0, ErrInvalidWeekStart
		}
		ws := calendar.WeekStart(day)
		filter.WeekStart = &ws
	}

	rotas, total, err := s.repo.Rota.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出排班周失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RotaResponse, 0, len(rotas))
	for i := range rotas {
		result = append(result, toRotaResponse(&rotas[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// UpdateStatus：draft → published → locked（published 可退回 draft）
// ════════════════════════════════════════════════════════════

func (s *rotaService) UpdateStatus(ctx context.Context, actor Actor, id string, req *dto.UpdateRotaStatusRequest) (*dto.RotaResponse, error) {
	rota, err := s.repo.Rota.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRotaNotFound
		}
		s.logger.Error("查询排班周失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !actor.owns(rota.OrgID) {
		return nil, ErrRotaNotFound
	}
	if req.Version != nil && *req.Version != rota.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	if !rota.CanTransitionTo(req.Status) {
		return nil, ErrRotaStatusTransition
	}

	from := rota.Status
	if err := s.repo.Rota.UpdateStatus(ctx, rota, req.Status, actor.UserID); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新排班周状态失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("排班周状态变更",
		zap.String("rota_id", id),
		zap.String("from", from),
		zap.String("to", req.Status),
		zap.String("operator", actor.UserID),
	)

	resp := toRotaResponse(rota)
	return &resp, nil
}
