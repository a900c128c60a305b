package dto

import "time"

// ── 打卡模块 DTO ──

// RecordClockEventRequest 打卡请求
// user_id 仅经理/管理员可代他人打卡；occurred_at 缺省为服务器当前时间
type RecordClockEventRequest struct {
	LocationID string     `json:"location_id" binding:"required,uuid"`
	UserID     *string    `json:"user_id"     binding:"omitempty,uuid"`
	Kind       string     `json:"kind"        binding:"required,oneof=clock_in clock_out break_start break_end"`
	OccurredAt *time.Time `json:"occurred_at"`
	Source     string     `json:"source"      binding:"omitempty,oneof=app kiosk manager"`
}

// ClockEventListRequest 打卡记录查询参数，from/to 为门店时区下的闭区间日期
type ClockEventListRequest struct {
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// ClockEventResponse 打卡记录响应
type ClockEventResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	LocationID string `json:"location_id"`
	Kind       string `json:"kind"`
	OccurredAt string `json:"occurred_at"`
	Source     string `json:"source"`
}
