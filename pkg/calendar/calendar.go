package calendar

import (
	"errors"
	"time"
)

// DateLayout 纯日期格式
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")

// DateOf 取 t 在其自身时区下的日历日期，返回 UTC 零点。
// 只看日期分量，不做时区换算。
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart 返回 t 所在周的周一日期（周一为一周第一天）。
//
// 按 t 自带偏移量下的日历日期计算，不换算到门店时区：
// 周日 23:59:59 归属本周，下周一 00:00:00 归属下一周。
// 排班周校验（WithinWeek）使用同一约定。
func WeekStart(t time.Time) time.Time {
	day := DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// WithinWeek 判断 t 的日期是否落在 [weekStart, weekStart+7d) 内
func WithinWeek(t, weekStart time.Time) bool {
	day := DateOf(t)
	start := DateOf(weekStart)
	return !day.Before(start) && day.Before(start.AddDate(0, 0, 7))
}

// ParseDate 解析 YYYY-MM-DD，返回 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// PeriodBounds 将闭区间日期 [start, end] 转为半开时间区间 [from, to)，
// 在 loc 时区下取当天零点；loc 为 nil 时按 UTC。
func PeriodBounds(start, end time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	from = time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
	to = time.Date(ey, em, ed+1, 0, 0, 0, 0, loc)
	return from, to
}

// LoadLocation 加载 IANA 时区，名称为空或无效时回退 UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayKey 取 t 在 loc 时区下的日期键，用于按天去重
func DayKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}
