package dto

// ── 排班周模块 DTO ──

// CreateRotaRequest 显式创建排班周请求
// week_start_date 可为周内任意日期，服务端归一到周一
type CreateRotaRequest struct {
	LocationID    string   `json:"location_id"     binding:"required,uuid"`
	WeekStartDate string   `json:"week_start_date" binding:"required,datetime=2006-01-02"`
	LaborBudget   *float64 `json:"labor_budget"    binding:"omitempty,min=0"`
	Notes         string   `json:"notes"           binding:"max=2000"`
}

// RotaListRequest 排班周列表查询参数
type RotaListRequest struct {
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	WeekStart  string `form:"week_start"  binding:"omitempty,datetime=2006-01-02"`
	Status     string `form:"status"      binding:"omitempty,oneof=draft published locked"`
	PaginationRequest
}

// UpdateRotaStatusRequest 排班周状态迁移请求
// version 可选，提供时与当前版本不一致返回冲突
type UpdateRotaStatusRequest struct {
	Status  string `json:"status"  binding:"required,oneof=draft published locked"`
	Version *int   `json:"version" binding:"omitempty,min=1"`
}

// ── 响应 ──

// RotaResponse 排班周响应
type RotaResponse struct {
	ID            string          `json:"id"`
	OrgID         string          `json:"org_id"`
	LocationID    string          `json:"location_id"`
	WeekStartDate string          `json:"week_start_date"`
	Status        string          `json:"status"`
	LaborBudget   *float64        `json:"labor_budget,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Version       int             `json:"version"`
	Shifts        []ShiftResponse `json:"shifts,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}
