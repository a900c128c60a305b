package dto

import "time"

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// rota_id 优先；未提供时按 location_id + start_at 解析或自动创建排班周
type CreateShiftRequest struct {
	RotaID       *string   `json:"rota_id"       binding:"omitempty,uuid"`
	LocationID   *string   `json:"location_id"   binding:"omitempty,uuid"`
	JobTagID     *string   `json:"job_tag_id"    binding:"omitempty,uuid"`
	StartAt      time.Time `json:"start_at"      binding:"required"`
	EndAt        time.Time `json:"end_at"        binding:"required"`
	BreakMinutes int       `json:"break_minutes" binding:"min=0"`
	Notes        string    `json:"notes"         binding:"max=2000"`
	Quantity     *int      `json:"quantity"      binding:"omitempty,min=1"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	RotaID string `form:"rota_id" binding:"required,uuid"`
}

// ── 响应 ──

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID           string               `json:"id"`
	OrgID        string               `json:"org_id"`
	LocationID   string               `json:"location_id"`
	RotaID       string               `json:"rota_id"`
	JobTagID     *string              `json:"job_tag_id,omitempty"`
	StartAt      string               `json:"start_at"`
	EndAt        string               `json:"end_at"`
	BreakMinutes int                  `json:"break_minutes"`
	Notes        string               `json:"notes,omitempty"`
	Assignments  []AssignmentResponse `json:"assignments,omitempty"`
	CreatedAt    string               `json:"created_at"`
}

// CreateShiftResponse 创建班次响应：shift 为第一条，shifts 为本次创建的全部
type CreateShiftResponse struct {
	Shift  ShiftResponse   `json:"shift"`
	Shifts []ShiftResponse `json:"shifts"`
	Count  int             `json:"count"`
}

// ShiftCalendarRequest 个人班次日历订阅参数
// from/to 为门店时区下的闭区间日期，缺省为本周一起 4 周
type ShiftCalendarRequest struct {
	LocationID string `form:"location_id" binding:"required,uuid"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
}
