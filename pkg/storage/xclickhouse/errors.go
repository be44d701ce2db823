package xclickhouse

import (
	"errors"
	"fmt"
)

var (
	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xclickhouse: nil context")

	// ErrNilClient 表示包装的底层连接为 nil。
	ErrNilClient = errors.New("xclickhouse: nil client")

	// ErrClosed 表示连接已关闭。
	ErrClosed = errors.New("xclickhouse: connection closed")

	// ErrNoClientOptions 表示 Config 既没有 Options 也没有 DSN。
	ErrNoClientOptions = errors.New("xclickhouse: no client options or dsn")

	// ErrInvalidConfig 表示厂商参数无法使用，此类错误不会重试。
	ErrInvalidConfig = errors.New("xclickhouse: invalid connection config")

	// ErrRetryExhausted 表示重试次数用尽仍未连通。
	ErrRetryExhausted = errors.New("xclickhouse: retry attempts exhausted")
)

// ConnectError 是启动期的致命错误：某个连接在用尽全部尝试后仍不可用。
//
// errors.Is(err, ErrRetryExhausted) 成立，Unwrap 返回最后一次失败的原因。
type ConnectError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("xclickhouse: connection %q failed after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrRetryExhausted) 成立。
func (e *ConnectError) Is(target error) bool {
	return target == ErrRetryExhausted
}
