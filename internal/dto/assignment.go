package dto

// ── 班次指派模块 DTO ──

// CreateAssignmentRequest 指派员工到班次
type CreateAssignmentRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Status string `json:"status"  binding:"omitempty,oneof=proposed assigned accepted declined"`
}

// UpdateAssignmentStatusRequest 更新指派状态
type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=proposed assigned accepted declined"`
}

// AssignmentResponse 指派响应
type AssignmentResponse struct {
	ID        string `json:"id"`
	ShiftID   string `json:"shift_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
