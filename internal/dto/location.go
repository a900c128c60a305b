package dto

// ── 门店模块 DTO ──

// CreateLocationRequest 创建门店请求
type CreateLocationRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=120"`
	Address  string `json:"address"  binding:"max=255"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"` // IANA 名称，缺省 UTC
}

// LocationResponse 门店响应
type LocationResponse struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Timezone  string `json:"timezone"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
