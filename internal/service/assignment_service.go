package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/pkg/database"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

// ── 指派模块业务错误 ──

var (
	ErrAssignmentNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "指派记录不存在")
	ErrAssignmentExists       = pkgerrors.New(pkgerrors.ErrConflict, "该员工已指派到此班次")
	ErrAssignmentUserNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "被指派员工不存在")
	ErrAssignmentForbidden    = errors.New("员工只能接受或拒绝自己的指派")
)

// AssignmentService 班次指派业务接口
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, shiftID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req *dto.UpdateAssignmentStatusRequest) (*dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, actor Actor, shiftID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	if !actor.owns(shift.OrgID) {
		return nil, ErrShiftNotFound
	}

	rota, err := s.repo.Rota.GetByID(ctx, shift.RotaID)
	if err != nil {
		s.logger.Error("查询班次所属排班周失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	if rota.IsLocked() {
		return nil, ErrRotaLocked
	}

	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentUserNotFound
		}
		return nil, err
	}
	if !actor.owns(user.OrgID) || !user.IsActive {
		return nil, ErrAssignmentUserNotFound
	}

	status := req.Status
	if status == "" {
		status = model.AssignmentStatusProposed
	}

	a := &model.ShiftAssignment{
		OrgID:   shift.OrgID,
		ShiftID: shift.ShiftID,
		UserID:  user.UserID,
		Status:  status,
	}
	a.CreatedBy = model.StrPtr(actor.UserID)
	a.UpdatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.ShiftAssignment.Create(ctx, a); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAssignmentExists
		}
		s.logger.Error("创建指派失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	resp := toAssignmentResponse(a)
	return &resp, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 经理可设置任意状态；员工只能对自己的指派执行接受或拒绝
func (s *assignmentService) UpdateStatus(ctx context.Context, actor Actor, id string, req *dto.UpdateAssignmentStatusRequest) (*dto.AssignmentResponse, error) {
	if !model.IsValidAssignmentStatus(req.Status) {
		return nil, pkgerrors.New(pkgerrors.ErrValidation, "指派状态无效")
	}

	a, err := s.repo.ShiftAssignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !actor.owns(a.OrgID) {
		return nil, ErrAssignmentNotFound
	}

	if !actor.IsScheduler() {
		if a.UserID != actor.UserID {
			return nil, ErrAssignmentForbidden
		}
		if req.Status != model.AssignmentStatusAccepted && req.Status != model.AssignmentStatusDeclined {
			return nil, ErrAssignmentForbidden
		}
	}

	if err := s.repo.ShiftAssignment.UpdateStatus(ctx, a.AssignmentID, req.Status, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("更新指派状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("指派状态变更",
		zap.String("assignment_id", id),
		zap.String("from", a.Status),
		zap.String("to", req.Status),
		zap.String("operator", actor.UserID),
	)

	a.Status = req.Status
	resp := toAssignmentResponse(a)
	return &resp, nil
}
