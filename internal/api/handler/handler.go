package handler

import "hospitality-ops/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Location   *LocationHandler
	Rota       *RotaHandler
	Shift      *ShiftHandler
	Assignment *AssignmentHandler
	Timeclock  *TimeclockHandler
	Timesheet  *TimesheetHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Location:   NewLocationHandler(svc.Location),
		Rota:       NewRotaHandler(svc.Rota),
		Shift:      NewShiftHandler(svc.Shift),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Timeclock:  NewTimeclockHandler(svc.Timeclock),
		Timesheet:  NewTimesheetHandler(svc.Timesheet),
		Export:     NewExportHandler(svc.Export),
	}
}
