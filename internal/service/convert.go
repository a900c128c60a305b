package service

import (
	"time"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/pkg/calendar"
)

// ── model → dto 转换 ──

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    u.UserID,
		OrgID: u.OrgID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func toRotaResponse(r *model.Rota) dto.RotaResponse {
	resp := dto.RotaResponse{
		ID:            r.RotaID,
		OrgID:         r.OrgID,
		LocationID:    r.LocationID,
		WeekStartDate: calendar.FormatDate(r.WeekStart()),
		Status:        r.Status,
		LaborBudget:   r.LaborBudget,
		Notes:         r.Notes,
		Version:       r.Version,
		CreatedAt:     formatTime(r.CreatedAt),
		UpdatedAt:     formatTime(r.UpdatedAt),
	}
	for i := range r.Shifts {
		resp.Shifts = append(resp.Shifts, toShiftResponse(&r.Shifts[i]))
	}
	return resp
}

func toShiftResponse(s *model.Shift) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:           s.ShiftID,
		OrgID:        s.OrgID,
		LocationID:   s.LocationID,
		RotaID:       s.RotaID,
		JobTagID:     s.JobTagID,
		StartAt:      formatTime(s.StartAt),
		EndAt:        formatTime(s.EndAt),
		BreakMinutes: s.BreakMinutes,
		Notes:        s.Notes,
		CreatedAt:    formatTime(s.CreatedAt),
	}
	for i := range s.Assignments {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(&s.Assignments[i]))
	}
	return resp
}

func toAssignmentResponse(a *model.ShiftAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:        a.AssignmentID,
		ShiftID:   a.ShiftID,
		UserID:    a.UserID,
		Status:    a.Status,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func toClockEventResponse(e *model.TimeClockEvent) dto.ClockEventResponse {
	return dto.ClockEventResponse{
		ID:         e.EventID,
		UserID:     e.UserID,
		LocationID: e.LocationID,
		Kind:       e.Kind,
		OccurredAt: formatTime(e.OccurredAt),
		Source:     e.Source,
	}
}

func toTimesheetResponse(ts *model.Timesheet) dto.TimesheetResponse {
	totals := ts.Totals.Data()
	resp := dto.TimesheetResponse{
		ID:          ts.TimesheetID,
		OrgID:       ts.OrgID,
		UserID:      ts.UserID,
		LocationID:  ts.LocationID,
		PeriodStart: calendar.FormatDate(time.Time(ts.PeriodStart)),
		PeriodEnd:   calendar.FormatDate(time.Time(ts.PeriodEnd)),
		Totals: dto.TimesheetTotals{
			RegularMinutes:  totals.RegularMinutes,
			OvertimeMinutes: totals.OvertimeMinutes,
			BreakMinutes:    totals.BreakMinutes,
			PlannedMinutes:  totals.PlannedMinutes,
			VarianceMinutes: totals.VarianceMinutes,
			DaysWorked:      totals.DaysWorked,
		},
		Status:     ts.Status,
		ApprovedBy: ts.ApprovedBy,
		CreatedAt:  formatTime(ts.CreatedAt),
		UpdatedAt:  formatTime(ts.UpdatedAt),
	}
	if ts.ApprovedAt != nil {
		s := formatTime(*ts.ApprovedAt)
		resp.ApprovedAt = &s
	}
	if ts.User != nil {
		resp.UserName = ts.User.Name
	}
	return resp
}
