package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospitality-ops/backend/config"
	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/internal/timesheet"
	"hospitality-ops/backend/pkg/calendar"
	"hospitality-ops/backend/pkg/database"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── 工时单模块业务错误 ──

var (
	ErrTimesheetNotFound         = pkgerrors.New(pkgerrors.ErrNotFound, "工时单不存在")
	ErrTimesheetLocked           = pkgerrors.New(pkgerrors.ErrConflict, "工时单已审批或锁定，需 force 才能重算")
	ErrInvalidPeriod             = pkgerrors.New(pkgerrors.ErrValidation, "周期无效，period_start 不能晚于 period_end")
	ErrTimesheetUserNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "员工不存在")
	ErrTimesheetStatusTransition = pkgerrors.New(pkgerrors.ErrConflict, "工时单当前状态不允许此操作")
	ErrSelfApproval              = pkgerrors.New(pkgerrors.ErrValidation, "不能审批自己的工时单")
	ErrTimesheetForbidden        = errors.New("无权查看他人工时单")
)

// TimesheetService 工时单业务接口
type TimesheetService interface {
	// GenerateOrUpdate 生成或重算工时单；created 为 true 表示新建
	GenerateOrUpdate(ctx context.Context, actor Actor, req *dto.GenerateTimesheetRequest) (*dto.TimesheetResponse, bool, error)
	List(ctx context.Context, actor Actor, req *dto.TimesheetListRequest) ([]dto.TimesheetResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error)
	Approve(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error)
	Lock(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error)
}

type timesheetService struct {
	cfg        *config.Config
	repo       *repository.Repository
	calculator timesheet.Calculator
	logger     *zap.Logger
	now        func() time.Time
}

// NewTimesheetService 创建 TimesheetService 实例
func NewTimesheetService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TimesheetService {
	return &timesheetService{
		cfg:        cfg,
		repo:       repo,
		calculator: timesheet.NewCalculator(cfg.Timesheet.OvertimeCapMinutes()),
		logger:     logger,
		now:        time.Now,
	}
}

// plannedStatuses 计入计划工时的指派状态
func (s *timesheetService) plannedStatuses() []string {
	statuses := []string{model.AssignmentStatusAssigned}
	if s.cfg.Timesheet.CountAcceptedAsPlanned {
		statuses = append(statuses, model.AssignmentStatusAccepted)
	}
	return statuses
}

// ════════════════════════════════════════════════════════════
// GenerateOrUpdate：汇总打卡与排班，写入工时单
// ════════════════════════════════════════════════════════════

func (s *timesheetService) GenerateOrUpdate(ctx context.Context, actor Actor, req *dto.GenerateTimesheetRequest) (*dto.TimesheetResponse, bool, error) {
	// 1. 周期与引用校验
	periodStart, err := calendar.ParseDate(req.PeriodStart)
	if err != nil {
		return nil, false, ErrInvalidPeriod
	}
	periodEnd, err := calendar.ParseDate(req.PeriodEnd)
	if err != nil {
		return nil, false, ErrInvalidPeriod
	}
	if periodEnd.Before(periodStart) {
		return nil, false, ErrInvalidPeriod
	}

	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrTimesheetUserNotFound
		}
		return nil, false, err
	}
	if !actor.owns(user.OrgID) {
		return nil, false, ErrTimesheetUserNotFound
	}

	loc, err := loadLocation(ctx, s.repo, actor, req.LocationID)
	if err != nil {
		return nil, false, err
	}

	key := repository.TimesheetKey{
		UserID:      user.UserID,
		LocationID:  loc.LocationID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	// 已冻结且未强制：直接拒绝，不做后续读取
	if existing, err := s.repo.Timesheet.GetByKey(ctx, key, false); err == nil {
		if existing.IsFrozen() && !req.Force {
			return nil, false, ErrTimesheetLocked
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询工时单失败", zap.Error(err))
		return nil, false, err
	}

	// 2. 并行读取打卡事件与已指派班次
	tz := loc.TimeLocation()
	from, to := calendar.PeriodBounds(periodStart, periodEnd, tz)

	var (
		events []model.TimeClockEvent
		shifts []model.Shift
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.repo.ClockEvent.ListForUser(gctx, user.UserID, loc.LocationID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		shifts, err = s.repo.Shift.ListAssignedForUser(gctx, user.UserID, loc.LocationID, from, to, s.plannedStatuses())
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("读取打卡或排班失败",
			zap.String("user_id", user.UserID),
			zap.String("location_id", loc.LocationID),
			zap.Error(err),
		)
		return nil, false, err
	}

	// 3. 纯计算
	worked := timesheet.CalculateWorkedHoursFromClockEvents(events, from, to, tz)
	planned := timesheet.CalculatePlannedHoursFromShifts(shifts, from, to, tz)
	totals := s.calculator.Totals(worked, planned)

	// 4. 事务内加锁写入
	var (
		result    *model.Timesheet
		created   bool
		wasFrozen string
	)
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		ts, err := txRepo.Timesheet.GetByKey(ctx, key, true)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if ts == nil {
			ts = &model.Timesheet{
				OrgID:       loc.OrgID,
				UserID:      user.UserID,
				LocationID:  loc.LocationID,
				PeriodStart: datatypes.Date(periodStart),
				PeriodEnd:   datatypes.Date(periodEnd),
				Totals:      datatypes.NewJSONType(totals),
				Status:      model.TimesheetStatusDraft,
			}
			ts.CreatedBy = model.StrPtr(actor.UserID)
			ts.UpdatedBy = model.StrPtr(actor.UserID)

			ok, err := txRepo.Timesheet.CreateIfAbsent(ctx, ts)
			if err != nil && !database.IsUniqueViolation(err) {
				return err
			}
			if ok {
				result, created = ts, true
				return nil
			}
			// 并发插入已胜出，按已有记录继续
			if ts, err = txRepo.Timesheet.GetByKey(ctx, key, true); err != nil {
				return err
			}
		}

		if ts.IsFrozen() {
			if !req.Force {
				return ErrTimesheetLocked
			}
			wasFrozen = ts.Status
		}

		ts.Totals = datatypes.NewJSONType(totals)
		ts.UpdatedBy = model.StrPtr(actor.UserID)
		if err := txRepo.Timesheet.UpdateTotals(ctx, ts); err != nil {
			return err
		}
		result = ts
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("写入工时单失败",
				zap.String("user_id", user.UserID),
				zap.String("location_id", loc.LocationID),
				zap.Error(err),
			)
		}
		return nil, false, err
	}

	if wasFrozen != "" {
		s.logger.Warn("强制重算已冻结工时单，状态重置为 draft",
			zap.String("timesheet_id", result.TimesheetID),
			zap.String("previous_status", wasFrozen),
			zap.String("operator", actor.UserID),
		)
	}

	result.User = user
	resp := toTimesheetResponse(result)
	return &resp, created, nil
}

// ════════════════════════════════════════════════════════════
// List / Get
// ════════════════════════════════════════════════════════════

// List 员工只能看到自己的工时单
func (s *timesheetService) List(ctx context.Context, actor Actor, req *dto.TimesheetListRequest) ([]dto.TimesheetResponse, int64, error) {
	filter, err := timesheetFilter(actor, req)
	if err != nil {
		return nil, 0, err
	}

	sheets, total, err := s.repo.Timesheet.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出工时单失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TimesheetResponse, 0, len(sheets))
	for i := range sheets {
		result = append(result, toTimesheetResponse(&sheets[i]))
	}
	return result, total, nil
}

func (s *timesheetService) Get(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error) {
	ts, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsScheduler() && ts.UserID != actor.UserID {
		return nil, ErrTimesheetForbidden
	}

	resp := toTimesheetResponse(ts)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Approve / Lock：draft → approved → locked
// ════════════════════════════════════════════════════════════

func (s *timesheetService) Approve(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error) {
	ts, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != model.TimesheetStatusDraft {
		return nil, ErrTimesheetStatusTransition
	}
	if ts.UserID == actor.UserID {
		return nil, ErrSelfApproval
	}

	now := s.now().UTC()
	ts.Status = model.TimesheetStatusApproved
	ts.ApprovedBy = model.StrPtr(actor.UserID)
	ts.ApprovedAt = &now
	ts.UpdatedBy = model.StrPtr(actor.UserID)
	if err := s.repo.Timesheet.UpdateStatus(ctx, ts, model.TimesheetStatusDraft); err != nil {
		return nil, s.statusUpdateError(id, err)
	}

	s.logger.Info("工时单已审批", zap.String("timesheet_id", id), zap.String("operator", actor.UserID))
	resp := toTimesheetResponse(ts)
	return &resp, nil
}

func (s *timesheetService) Lock(ctx context.Context, actor Actor, id string) (*dto.TimesheetResponse, error) {
	ts, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != model.TimesheetStatusApproved {
		return nil, ErrTimesheetStatusTransition
	}

	ts.Status = model.TimesheetStatusLocked
	ts.UpdatedBy = model.StrPtr(actor.UserID)
	if err := s.repo.Timesheet.UpdateStatus(ctx, ts, model.TimesheetStatusApproved); err != nil {
		return nil, s.statusUpdateError(id, err)
	}

	s.logger.Info("工时单已锁定", zap.String("timesheet_id", id), zap.String("operator", actor.UserID))
	resp := toTimesheetResponse(ts)
	return &resp, nil
}

func (s *timesheetService) load(ctx context.Context, actor Actor, id string) (*model.Timesheet, error) {
	ts, err := s.repo.Timesheet.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("查询工时单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !actor.owns(ts.OrgID) {
		return nil, ErrTimesheetNotFound
	}
	return ts, nil
}

func (s *timesheetService) statusUpdateError(id string, err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return ErrTimesheetStatusTransition
	}
	s.logger.Error("更新工时单状态失败", zap.String("id", id), zap.Error(err))
	return err
}

// timesheetFilter 将查询参数转换为仓储筛选条件，员工强制只看自己
func timesheetFilter(actor Actor, req *dto.TimesheetListRequest) (repository.TimesheetFilter, error) {
	filter := repository.TimesheetFilter{
		OrgID:      actor.OrgID,
		LocationID: req.LocationID,
		UserID:     req.UserID,
		Status:     req.Status,
	}
	if !actor.IsScheduler() {
		filter.UserID = actor.UserID
	}
	if req.PeriodStart != "" {
		d, err := calendar.ParseDate(req.PeriodStart)
		if err != nil {
			return filter, ErrInvalidPeriod
		}
		filter.PeriodStart = &d
	}
	if req.PeriodEnd != "" {
		d, err := calendar.ParseDate(req.PeriodEnd)
		if err != nil {
			return filter, ErrInvalidPeriod
		}
		filter.PeriodEnd = &d
	}
	if filter.PeriodStart != nil && filter.PeriodEnd != nil && filter.PeriodEnd.Before(*filter.PeriodStart) {
		return filter, ErrInvalidPeriod
	}
	return filter, nil
}
