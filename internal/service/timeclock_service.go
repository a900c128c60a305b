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
	"hospitality-ops/backend/pkg/calendar"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// 打卡来源
const (
	ClockSourceApp     = "app"
	ClockSourceKiosk   = "kiosk"
	ClockSourceManager = "manager"
)

// ── 打卡模块业务错误 ──

var (
	ErrClockUserNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "打卡员工不存在")
	ErrInvalidClockKind  = pkgerrors.New(pkgerrors.ErrValidation, "打卡类型无效")
	ErrClockForOthers    = errors.New("仅经理或管理员可代他人打卡")
	ErrInvalidClockRange = pkgerrors.New(pkgerrors.ErrValidation, "查询区间无效，from 不能晚于 to")
)

// TimeclockService 打卡业务接口
type TimeclockService interface {
	Record(ctx context.Context, actor Actor, req *dto.RecordClockEventRequest) (*dto.ClockEventResponse, error)
	List(ctx context.Context, actor Actor, req *dto.ClockEventListRequest) ([]dto.ClockEventResponse, int64, error)
}

type timeclockService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTimeclockService 创建 TimeclockService 实例
func NewTimeclockService(repo *repository.Repository, logger *zap.Logger) TimeclockService {
	return &timeclockService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Record ──────────────────────

func (s *timeclockService) Record(ctx context.Context, actor Actor, req *dto.RecordClockEventRequest) (*dto.ClockEventResponse, error) {
	if !model.IsValidClockKind(req.Kind) {
		return nil, ErrInvalidClockKind
	}

	userID := actor.UserID
	onBehalf := req.UserID != nil && *req.UserID != "" && *req.UserID != actor.UserID
	if onBehalf {
		if !actor.IsScheduler() {
			return nil, ErrClockForOthers
		}
		userID = *req.UserID
	}

	loc, err := loadLocation(ctx, s.repo, actor, req.LocationID)
	if err != nil {
		return nil, err
	}

	if onBehalf {
		user, err := s.repo.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClockUserNotFound
			}
			return nil, err
		}
		if !actor.owns(user.OrgID) {
			return nil, ErrClockUserNotFound
		}
	}

	occurredAt := s.now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	source := req.Source
	if source == "" {
		source = ClockSourceApp
		if onBehalf {
			source = ClockSourceManager
		}
	}

	event := &model.TimeClockEvent{
		OrgID:      loc.OrgID,
		LocationID: loc.LocationID,
		UserID:     userID,
		Kind:       req.Kind,
		OccurredAt: occurredAt.UTC(),
		Source:     source,
		CreatedBy:  model.StrPtr(actor.UserID),
	}
	if err := s.repo.ClockEvent.Create(ctx, event); err != nil {
		s.logger.Error("记录打卡失败",
			zap.String("user_id", userID),
			zap.String("location_id", loc.LocationID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := toClockEventResponse(event)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

// List 员工只能查询自己的打卡；from/to 按门店时区（未指定门店时按 UTC）解释
func (s *timeclockService) List(ctx context.Context, actor Actor, req *dto.ClockEventListRequest) ([]dto.ClockEventResponse, int64, error) {
	filter := repository.ClockEventFilter{
		OrgID:      actor.OrgID,
		UserID:     req.UserID,
		LocationID: req.LocationID,
	}
	if !actor.IsScheduler() {
		filter.UserID = actor.UserID
	}

	tz := time.UTC
	if req.LocationID != "" {
		loc, err := loadLocation(ctx, s.repo, actor, req.LocationID)
		if err != nil {
			return nil, 0, err
		}
		tz = loc.TimeLocation()
	}

	if req.From != "" {
		d, err := calendar.ParseDate(req.From)
		if err != nil {
			return nil, 0, pkgerrors.New(pkgerrors.ErrValidation, err.Error())
		}
		from, _ := calendar.PeriodBounds(d, d, tz)
		filter.From = &from
	}
	if req.To != "" {
		d, err := calendar.ParseDate(req.To)
		if err != nil {
			return nil, 0, pkgerrors.New(pkgerrors.ErrValidation, err.Error())
		}
		_, to := calendar.PeriodBounds(d, d, tz)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, ErrInvalidClockRange
	}

	events, total, err := s.repo.ClockEvent.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询打卡记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ClockEventResponse, 0, len(events))
	for i := range events {
		result = append(result, toClockEventResponse(&events[i]))
	}
	return result, total, nil
}
