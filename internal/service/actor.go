package service

import "hospitality-ops/backend/internal/model"

// Actor 当前请求的调用者，由 JWT 声明构造。
// OrgID 是所有查询的租户边界：跨租户的资源一律按不存在处理。
type Actor struct {
	UserID string
	OrgID  string
	Role   string
}

// IsScheduler 是否为经理或管理员
func (a Actor) IsScheduler() bool {
	return a.Role == model.RoleAdmin || a.Role == model.RoleManager
}

// owns 资源是否属于调用者所在组织
func (a Actor) owns(orgID string) bool {
	return orgID != "" && orgID == a.OrgID
}
