package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 工时单状态
const (
	TimesheetStatusDraft    = "draft"
	TimesheetStatusApproved = "approved"
	TimesheetStatusLocked   = "locked"
)

// TimesheetTotals 工时单汇总（以分钟计），序列化后存入 totals 列
type TimesheetTotals struct {
	RegularMinutes  int `json:"regular_minutes"`
	OvertimeMinutes int `json:"overtime_minutes"`
	BreakMinutes    int `json:"break_minutes"`
	PlannedMinutes  int `json:"planned_minutes"`
	VarianceMinutes int `json:"variance_minutes"` // 实际 − 计划，正数表示多干
	DaysWorked      int `json:"days_worked"`
}

// Timesheet 工时单表：对应 timesheets
// 唯一键 (user_id, location_id, period_start, period_end)
type Timesheet struct {
	TimesheetID string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timesheet_id"`
	OrgID       string                              `gorm:"type:uuid;not null"                             json:"org_id"`
	UserID      string                              `gorm:"type:uuid;not null"                             json:"user_id"`
	LocationID  string                              `gorm:"type:uuid;not null"                             json:"location_id"`
	PeriodStart datatypes.Date                      `gorm:"type:date;not null"                             json:"period_start"`
	PeriodEnd   datatypes.Date                      `gorm:"type:date;not null"                             json:"period_end"`
	Totals      datatypes.JSONType[TimesheetTotals] `gorm:"type:jsonb;not null"                            json:"totals"`
	Status      string                              `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | approved | locked
	ApprovedBy  *string                             `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt  *time.Time                          `json:"approved_at,omitempty"`
	BaseModel

	// 关联
	User     *User     `gorm:"foreignKey:UserID;references:UserID"         json:"user,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
}

// TableName 指定表名
func (Timesheet) TableName() string { return "timesheets" }

func (t *Timesheet) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TimesheetID)
	return nil
}

// IsFrozen 已审批或已锁定的工时单不允许普通重算
func (t *Timesheet) IsFrozen() bool {
	return t.Status == TimesheetStatusApproved || t.Status == TimesheetStatusLocked
}
