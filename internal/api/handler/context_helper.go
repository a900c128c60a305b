package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospitality-ops/backend/internal/service"
	"hospitality-ops/backend/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxUserID   = "user_id"
	ctxOrgID    = "org_id"
	ctxRole     = "role"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetActor 从 Gin 上下文构造调用者（用户、组织、角色）。
// JWT 中间件未注入完整信息时写入 401 响应并返回 false，
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := mustGetString(c, ctxUserID)
	if !ok {
		return service.Actor{}, false
	}
	orgID, ok := mustGetString(c, ctxOrgID)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := mustGetString(c, ctxRole)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, OrgID: orgID, Role: role}, true
}

// tokenRemaining 当前 Access Token 的 jti 与剩余有效期
func tokenRemaining(c *gin.Context) (string, time.Duration) {
	jti := c.GetString(ctxTokenJTI)
	exp, ok := c.Get(ctxTokenExp)
	if !ok {
		return jti, 0
	}
	t, ok := exp.(time.Time)
	if !ok {
		return jti, 0
	}
	return jti, time.Until(t)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
