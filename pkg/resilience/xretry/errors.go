package xretry

import "errors"

// 参数校验错误。
var (
	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilFunc 表示传入了 nil 函数。
	ErrNilFunc = errors.New("xretry: nil function")

	// ErrNilRetryer 表示在 nil Retryer 上调用。
	ErrNilRetryer = errors.New("xretry: nil retryer")
)

// PermanentError 永久性错误（不应重试）
type PermanentError struct {
	Err error
}

// NewPermanentError 创建永久性错误
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsRetryable 检查错误是否可重试
//   - nil 错误：不需要重试
//   - 错误链中包含 PermanentError：不重试
//   - 其他错误：默认视为可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *PermanentError
	return !errors.As(err, &pe)
}
