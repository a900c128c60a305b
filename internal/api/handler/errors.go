package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "hospitality-ops/backend/pkg/errors"
	"hospitality-ops/backend/pkg/response"
)

// respondByKind 未被模块映射命中的错误按分类兜底
func respondByKind(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10404, err.Error())
	case errors.Is(err, pkgerrors.ErrConflict):
		response.Conflict(c, 10409, err.Error())
	case errors.Is(err, pkgerrors.ErrDataIntegrity):
		response.Error(c, http.StatusInternalServerError, 50001, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindFailed 参数绑定失败统一返回 10001
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
