package errors

import "errors"

// ── 错误分类 ──
// 各业务模块的哨兵错误通过 New 挂靠到以下分类之一，
// Handler 先按具体错误映射业务码，未命中时按分类兜底映射 HTTP 状态。

var (
	// ErrValidation 输入不合法或违反业务规则 → 400
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 引用的资源不存在 → 404
	ErrNotFound = errors.New("资源不存在")
	// ErrConflict 资源状态冲突 → 409
	ErrConflict = errors.New("资源状态冲突")
	// ErrDataIntegrity 数据无法推导（如地点缺少所属组织）→ 500
	ErrDataIntegrity = errors.New("数据完整性错误")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(ErrConflict, "数据已被其他操作修改，请刷新后重试")

// kindError 携带分类的业务错误，Error() 只返回业务消息
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New 创建归属于 kind 分类的业务错误
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Is 透传标准库 errors.Is，便于调用方只导入本包
func Is(err, target error) bool {
	return errors.Is(err, target)
}
