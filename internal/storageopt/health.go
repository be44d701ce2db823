package storageopt

import (
	"context"
	"time"
)

// DefaultHealthTimeout 健康检查的默认超时。
const DefaultHealthTimeout = 5 * time.Second

// HealthContext 为健康检查派生带超时的 context。
// timeout <= 0 时不设超时，返回原 ctx 与空 cancel。
func HealthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
