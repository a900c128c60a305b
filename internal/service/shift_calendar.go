package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"hospitality-ops/backend/internal/dto"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/pkg/calendar"
	pkgerrors "hospitality-ops/backend/pkg/errors"
)

const (
	// calendarDefaultWeeks 未指定区间时导出的周数
	calendarDefaultWeeks = 4
	// calendarMaxDays 单次导出的最大天数
	calendarMaxDays = 92
)

var ErrInvalidCalendarRange = pkgerrors.New(pkgerrors.ErrValidation, "日历区间无效：from 不能晚于 to，且跨度不超过 92 天")

// calendarStatuses 计入个人日历的指派状态
var calendarStatuses = []string{model.AssignmentStatusAssigned, model.AssignmentStatusAccepted}

// ═══════════════════════════════════════════════════════════
// ExportShiftCalendar：导出调用者本人的班次为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个 assigned / accepted 班次对应一个 VEVENT，UID 为班次 ID，
// 日历客户端重复订阅时按 UID 覆盖更新。

func (s *exportService) ExportShiftCalendar(ctx context.Context, actor Actor, req *dto.ShiftCalendarRequest) ([]byte, string, error) {
	loc, err := loadLocation(ctx, s.repo, actor, req.LocationID)
	if err != nil {
		return nil, "", err
	}
	tz := calendar.LoadLocation(loc.Timezone)

	from, to, err := calendarRange(req, s.now().In(tz), tz)
	if err != nil {
		return nil, "", err
	}

	shifts, err := s.repo.Shift.ListAssignedForUser(ctx, actor.UserID, loc.LocationID, from, to, calendarStatuses)
	if err != nil {
		s.logger.Error("查询个人班次失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendarFor("hospitality-ops")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(fmt.Sprintf("我的班次 · %s", loc.Name))
	cal.SetXWRTimezone(tz.String())

	stamp := s.now().UTC()
	for i := range shifts {
		addShiftEvent(cal, &shifts[i], loc, stamp)
	}

	filename := fmt.Sprintf("shifts_%s_%s.ics", calendar.FormatDate(from), calendar.FormatDate(to.AddDate(0, 0, -1)))
	return []byte(cal.Serialize()), filename, nil
}

// calendarRange 解析导出区间，返回半开区间 [from, to)
func calendarRange(req *dto.ShiftCalendarRequest, now time.Time, tz *time.Location) (time.Time, time.Time, error) {
	startDay := calendar.WeekStart(now)
	if req.From != "" {
		d, err := calendar.ParseDate(req.From)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidCalendarRange
		}
		startDay = d
	}

	endDay := startDay.AddDate(0, 0, calendarDefaultWeeks*7-1)
	if req.To != "" {
		d, err := calendar.ParseDate(req.To)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidCalendarRange
		}
		endDay = d
	}

	if endDay.Before(startDay) || endDay.Sub(startDay) >= calendarMaxDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrInvalidCalendarRange
	}

	from, to := calendar.PeriodBounds(startDay, endDay, tz)
	return from, to, nil
}

func addShiftEvent(cal *ics.Calendar, shift *model.Shift, loc *model.Location, stamp time.Time) {
	event := cal.AddEvent(shift.ShiftID + "@hospitality-ops")
	event.SetDtStampTime(stamp)
	event.SetStartAt(shift.StartAt.UTC())
	event.SetEndAt(shift.EndAt.UTC())
	event.SetSummary(fmt.Sprintf("班次 · %s", loc.Name))
	event.SetStatus(ics.ObjectStatusConfirmed)
	if loc.Address != "" {
		event.SetLocation(loc.Address)
	}

	desc := fmt.Sprintf("休息 %d 分钟", shift.BreakMinutes)
	if shift.Notes != "" {
		desc += "\n" + shift.Notes
	}
	event.SetDescription(desc)
}
