package model

import (
	"time"

	"gorm.io/gorm"
)

// 打卡事件类型
const (
	ClockIn    = "clock_in"
	ClockOut   = "clock_out"
	BreakStart = "break_start"
	BreakEnd   = "break_end"
)

// TimeClockEvent 打卡事件表：对应 time_clock_events
// 记录写入后不可修改
type TimeClockEvent struct {
	EventID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	OrgID      string    `gorm:"type:uuid;not null"                             json:"org_id"`
	LocationID string    `gorm:"type:uuid;not null"                             json:"location_id"`
	UserID     string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Kind       string    `gorm:"type:varchar(20);not null"                      json:"kind"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null"                      json:"occurred_at"`
	Source     string    `gorm:"type:varchar(20);not null;default:'app'"        json:"source"` // app | kiosk | manager
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy  *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
}

// TableName 指定表名
func (TimeClockEvent) TableName() string { return "time_clock_events" }

func (e *TimeClockEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EventID)
	return nil
}

// IsValidClockKind 校验打卡类型取值
func IsValidClockKind(kind string) bool {
	switch kind {
	case ClockIn, ClockOut, BreakStart, BreakEnd:
		return true
	}
	return false
}
