package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospitality-ops/backend/config"
	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/pkg/calendar"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound          = pkgerrors.New(pkgerrors.ErrNotFound, "班次不存在")
	ErrInvalidShiftWindow     = pkgerrors.New(pkgerrors.ErrValidation, "班次结束时间必须晚于开始时间，且休息时长需小于班次时长")
	ErrRotaOrLocationRequired = pkgerrors.New(pkgerrors.ErrValidation, "rota_id 与 location_id 至少提供一个")
	ErrInvalidQuantity        = pkgerrors.New(pkgerrors.ErrValidation, "quantity 超出允许范围")
	ErrJobTagNotFound         = pkgerrors.New(pkgerrors.ErrNotFound, "岗位标签不存在")
)

// ShiftService 班次业务接口
type ShiftService interface {
	// CreateShift 创建 quantity 条相同班次，全部成功或全部失败
	CreateShift(ctx context.Context, actor Actor, req *dto.CreateShiftRequest) (*dto.CreateShiftResponse, error)
	List(ctx context.Context, actor Actor, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
}

type shiftService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// CreateShift：校验 → 解析排班周 → 事务内批量写入
// ════════════════════════════════════════════════════════════

func (s *shiftService) CreateShift(ctx context.Context, actor Actor, req *dto.CreateShiftRequest) (*dto.CreateShiftResponse, error) {
	// 1. 纯参数校验，不访问存储
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 || quantity > s.cfg.Shift.MaxBatchQuantity {
		return nil, ErrInvalidQuantity
	}
	if !req.EndAt.After(req.StartAt) || req.BreakMinutes < 0 {
		return nil, ErrInvalidShiftWindow
	}
	if float64(req.BreakMinutes) >= req.EndAt.Sub(req.StartAt).Minutes() {
		return nil, ErrInvalidShiftWindow
	}
	rotaID := derefString(req.RotaID)
	locationID := derefString(req.LocationID)
	if rotaID == "" && locationID == "" {
		return nil, ErrRotaOrLocationRequired
	}

	// 2. 岗位标签须属于调用者组织
	if jobTagID := derefString(req.JobTagID); jobTagID != "" {
		tag, err := s.repo.JobTag.GetByID(ctx, jobTagID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJobTagNotFound
			}
			s.logger.Error("查询岗位标签失败", zap.String("job_tag_id", jobTagID), zap.Error(err))
			return nil, err
		}
		if !actor.owns(tag.OrgID) {
			return nil, ErrJobTagNotFound
		}
	}

	// 3. 指定 rota_id：写入前完成排班周校验
	var rota *model.Rota
	if rotaID != "" {
		r, err := s.repo.Rota.GetByID(ctx, rotaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRotaNotFound
			}
			s.logger.Error("查询排班周失败", zap.String("rota_id", rotaID), zap.Error(err))
			return nil, err
		}
		if !actor.owns(r.OrgID) {
			return nil, ErrRotaNotFound
		}
		if err := ValidateShiftWithinRotaWeek(req.StartAt, r.WeekStart()); err != nil {
			return nil, err
		}
		if r.IsLocked() {
			return nil, ErrRotaLocked
		}
		rota = r
	}

	// 4. 事务：按需解析 / 创建排班周，单条 INSERT 写入全部班次
	var (
		shifts      []model.Shift
		rotaCreated bool
	)
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		target := rota
		if target == nil {
			r, created, err := resolveOrCreateRota(ctx, txRepo, actor, locationID, req.StartAt)
			if err != nil {
				return err
			}
			if err := ValidateShiftWithinRotaWeek(req.StartAt, r.WeekStart()); err != nil {
				return err
			}
			if r.IsLocked() {
				return ErrRotaLocked
			}
			target, rotaCreated = r, created
		}

		shifts = make([]model.Shift, quantity)
		for i := range shifts {
			shifts[i] = model.Shift{
				OrgID:        target.OrgID,
				LocationID:   target.LocationID,
				RotaID:       target.RotaID,
				JobTagID:     req.JobTagID,
				StartAt:      req.StartAt.UTC(),
				EndAt:        req.EndAt.UTC(),
				BreakMinutes: req.BreakMinutes,
				Notes:        req.Notes,
			}
			shifts[i].CreatedBy = model.StrPtr(actor.UserID)
			shifts[i].UpdatedBy = model.StrPtr(actor.UserID)
		}
		return txRepo.Shift.BatchCreate(ctx, shifts)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("创建班次失败",
				zap.String("rota_id", rotaID),
				zap.String("location_id", locationID),
				zap.Int("quantity", quantity),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if rotaCreated {
		s.logger.Info("自动创建排班周",
			zap.String("rota_id", shifts[0].RotaID),
			zap.String("location_id", shifts[0].LocationID),
			zap.String("week_start", calendar.FormatDate(calendar.WeekStart(req.StartAt))),
		)
	}
	s.logger.Info("班次已创建",
		zap.String("rota_id", shifts[0].RotaID),
		zap.Int("count", len(shifts)),
		zap.String("operator", actor.UserID),
	)

	resp := &dto.CreateShiftResponse{
		Shifts: make([]dto.ShiftResponse, 0, len(shifts)),
		Count:  len(shifts),
	}
	for i := range shifts {
		resp.Shifts = append(resp.Shifts, toShiftResponse(&shifts[i]))
	}
	resp.Shift = resp.Shifts[0]
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// List：排班周下的全部班次
// ════════════════════════════════════════════════════════════

func (s *shiftService) List(ctx context.Context, actor Actor, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	rota, err := s.repo.Rota.GetByID(ctx, req.RotaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRotaNotFound
		}
		return nil, err
	}
	if !actor.owns(rota.OrgID) {
		return nil, ErrRotaNotFound
	}

	shifts, err := s.repo.Shift.ListByRota(ctx, rota.RotaID)
	if err != nil {
		s.logger.Error("列出班次失败", zap.String("rota_id", rota.RotaID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result, nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// isBusinessError 是否为挂靠到错误分类的业务错误（无需按系统错误记录日志）
func isBusinessError(err error) bool {
	return errors.Is(err, pkgerrors.ErrValidation) ||
		errors.Is(err, pkgerrors.ErrNotFound) ||
		errors.Is(err, pkgerrors.ErrConflict)
}
