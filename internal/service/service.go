package service

import (
	"go.uber.org/zap"

	"hospitality-ops/backend/config"
	"hospitality-ops/backend/internal/repository"
	"hospitality-ops/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Location   LocationService
	Rota       RotaService
	Shift      ShiftService
	Assignment AssignmentService
	Timeclock  TimeclockService
	Timesheet  TimesheetService
	Export     ExportService
}

// NewService 创建 Service 聚合；tokens 为 nil 时登出不写黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Location:   NewLocationService(repo, logger),
		Rota:       NewRotaService(repo, logger),
		Shift:      NewShiftService(cfg, repo, logger),
		Assignment: NewAssignmentService(repo, logger),
		Timeclock:  NewTimeclockService(repo, logger),
		Timesheet:  NewTimesheetService(cfg, repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
