// Package timesheet 工时核算：由打卡事件与已指派班次计算实际/计划工时及加班、差异。
// 本包只做纯计算，不访问存储。
package timesheet

import (
	"sort"
	"time"

	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/pkg/calendar"
)

// DefaultOvertimeCapMinutes 周期内常规工时上限（160 小时），超出部分计为加班
const DefaultOvertimeCapMinutes = 160 * 60

// WorkedHours 打卡统计结果
type WorkedHours struct {
	TotalMinutes  int // 净工时 = 毛工时 − 休息
	BreakMinutes  int
	GrossMinutes  int
	SessionsCount int // 完整的上下班会话数
	DaysWorked    int // 至少有一个完整会话的自然日数
}

// PlannedHours 排班统计结果
type PlannedHours struct {
	TotalMinutes int
	ShiftCount   int
	ShiftDays    int // 同一天多个班次只计一次
}

// Calculator 工时汇总器，OvertimeCapMinutes 可由配置覆盖
type Calculator struct {
	OvertimeCapMinutes int
}

// NewCalculator 创建汇总器，capMinutes <= 0 时使用 DefaultOvertimeCapMinutes
func NewCalculator(capMinutes int) Calculator {
	if capMinutes <= 0 {
		capMinutes = DefaultOvertimeCapMinutes
	}
	return Calculator{OvertimeCapMinutes: capMinutes}
}

// ════════════════════════════════════════════════════════════
// CalculateWorkedHoursFromClockEvents：打卡事件 → 实际工时
// ════════════════════════════════════════════════════════════

// CalculateWorkedHoursFromClockEvents 按时间顺序配对打卡事件，统计 [periodStart, periodEnd) 内的实际工时。
//
// 规则：
//   - clock_in 开启会话，下一个 clock_out 结束会话；会话不嵌套，
//     会话未结束时再次 clock_in，之前的会话作为不完整会话丢弃
//   - 会话内 break_start 与下一个 break_end 配对；clock_out 时仍未结束的休息按 clock_out 时刻截止
//   - 在 periodEnd 之前没有 clock_out 的会话计 0 分钟，不外推到周期末
//   - 会话外的 break_* / clock_out 忽略
//   - 分钟数向下取整，每个会话的净工时不小于 0
//
// 事件由调用方按用户/门店过滤；loc 用于确定上班日期（nil 按 UTC）。
func CalculateWorkedHoursFromClockEvents(events []model.TimeClockEvent, periodStart, periodEnd time.Time, loc *time.Location) WorkedHours {
	sorted := make([]model.TimeClockEvent, 0, len(events))
	for _, e := range events {
		if e.OccurredAt.Before(periodStart) || !e.OccurredAt.Before(periodEnd) {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	var (
		result       WorkedHours
		days         = make(map[string]struct{})
		inSession    bool
		sessionStart time.Time
		onBreak      bool
		breakStart   time.Time
		breakTotal   time.Duration
	)

	for _, e := range sorted {
		switch e.Kind {
		case model.ClockIn:
			inSession = true
			sessionStart = e.OccurredAt
			onBreak = false
			breakTotal = 0

		case model.BreakStart:
			if inSession && !onBreak {
				onBreak = true
				breakStart = e.OccurredAt
			}

		case model.BreakEnd:
			if inSession && onBreak {
				breakTotal += e.OccurredAt.Sub(breakStart)
				onBreak = false
			}

		case model.ClockOut:
			if !inSession {
				continue
			}
			if onBreak {
				breakTotal += e.OccurredAt.Sub(breakStart)
				onBreak = false
			}

			gross := wholeMinutes(e.OccurredAt.Sub(sessionStart))
			breaks := wholeMinutes(breakTotal)
			if breaks > gross {
				breaks = gross
			}

			result.GrossMinutes += gross
			result.BreakMinutes += breaks
			result.TotalMinutes += gross - breaks
			result.SessionsCount++
			days[calendar.DayKey(sessionStart, loc)] = struct{}{}

			inSession = false
		}
	}

	result.DaysWorked = len(days)
	return result
}

// ════════════════════════════════════════════════════════════
// CalculatePlannedHoursFromShifts：已指派班次 → 计划工时
// ════════════════════════════════════════════════════════════

// CalculatePlannedHoursFromShifts 统计开始时间落在 [periodStart, periodEnd) 内的班次计划工时。
// 每个班次净时长 = (end − start) − break_minutes，不小于 0。
// 班次由调用方按指派状态过滤。
func CalculatePlannedHoursFromShifts(shifts []model.Shift, periodStart, periodEnd time.Time, loc *time.Location) PlannedHours {
	var result PlannedHours
	days := make(map[string]struct{})

	for _, s := range shifts {
		if s.StartAt.Before(periodStart) || !s.StartAt.Before(periodEnd) {
			continue
		}

		net := wholeMinutes(s.EndAt.Sub(s.StartAt)) - s.BreakMinutes
		if net < 0 {
			net = 0
		}

		result.TotalMinutes += net
		result.ShiftCount++
		days[calendar.DayKey(s.StartAt, loc)] = struct{}{}
	}

	result.ShiftDays = len(days)
	return result
}

// ════════════════════════════════════════════════════════════
// GenerateTimesheetTotals：实际 + 计划 → 工时单汇总
// ════════════════════════════════════════════════════════════

// GenerateTimesheetTotals 使用 DefaultOvertimeCapMinutes 汇总
func GenerateTimesheetTotals(worked WorkedHours, planned PlannedHours) model.TimesheetTotals {
	return NewCalculator(DefaultOvertimeCapMinutes).Totals(worked, planned)
}

// Totals 汇总实际与计划工时。纯函数，相同输入得到相同输出。
func (c Calculator) Totals(worked WorkedHours, planned PlannedHours) model.TimesheetTotals {
	limit := c.OvertimeCapMinutes
	if limit <= 0 {
		limit = DefaultOvertimeCapMinutes
	}

	regular := worked.TotalMinutes
	overtime := 0
	if regular > limit {
		overtime = regular - limit
		regular = limit
	}

	return model.TimesheetTotals{
		RegularMinutes:  regular,
		OvertimeMinutes: overtime,
		BreakMinutes:    worked.BreakMinutes,
		PlannedMinutes:  planned.TotalMinutes,
		VarianceMinutes: worked.TotalMinutes - planned.TotalMinutes,
		DaysWorked:      worked.DaysWorked,
	}
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
