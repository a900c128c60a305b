package dto

// ── 工时单模块 DTO ──

// GenerateTimesheetRequest 生成或重算工时单
type GenerateTimesheetRequest struct {
	UserID      string `json:"user_id"      binding:"required,uuid"`
	LocationID  string `json:"location_id"  binding:"required,uuid"`
	PeriodStart string `json:"period_start" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end"   binding:"required,datetime=2006-01-02"`
	Force       bool   `json:"force"`
}

// TimesheetListRequest 工时单列表 / 导出查询参数
type TimesheetListRequest struct {
	LocationID  string `form:"location_id"  binding:"omitempty,uuid"`
	UserID      string `form:"user_id"      binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,oneof=draft approved locked"`
	PeriodStart string `form:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `form:"period_end"   binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// TimesheetTotals 工时汇总（分钟）
type TimesheetTotals struct {
	RegularMinutes  int `json:"regular_minutes"`
	OvertimeMinutes int `json:"overtime_minutes"`
	BreakMinutes    int `json:"break_minutes"`
	PlannedMinutes  int `json:"planned_minutes"`
	VarianceMinutes int `json:"variance_minutes"`
	DaysWorked      int `json:"days_worked"`
}

// TimesheetResponse 工时单响应
type TimesheetResponse struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name,omitempty"`
	LocationID  string          `json:"location_id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Totals      TimesheetTotals `json:"totals"`
	Status      string          `json:"status"`
	ApprovedBy  *string         `json:"approved_by,omitempty"`
	ApprovedAt  *string         `json:"approved_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}
