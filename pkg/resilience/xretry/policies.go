package xretry

import (
	"context"
	"time"
)

// FixedRetryPolicy 固定次数重试策略
type FixedRetryPolicy struct {
	maxAttempts int
}

// NewFixedRetry 创建固定次数重试策略
// maxAttempts: 最大尝试次数（包含首次尝试），最小为 1
func NewFixedRetry(maxAttempts int) *FixedRetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FixedRetryPolicy{maxAttempts: maxAttempts}
}

// MaxAttempts 返回最大尝试次数。
func (p *FixedRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry 未达上限、ctx 未取消且错误可重试时返回 true。
func (p *FixedRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	return IsRetryable(err)
}

// FixedBackoff 固定延迟退避策略
type FixedBackoff struct {
	delay time.Duration
}

// NewFixedBackoff 创建固定延迟退避策略，负数视为 0。
func NewFixedBackoff(delay time.Duration) *FixedBackoff {
	if delay < 0 {
		delay = 0
	}
	return &FixedBackoff{delay: delay}
}

// NextDelay 始终返回固定延迟。
func (b *FixedBackoff) NextDelay(_ int) time.Duration {
	return b.delay
}

// 确保实现了接口
var (
	_ RetryPolicy   = (*FixedRetryPolicy)(nil)
	_ BackoffPolicy = (*FixedBackoff)(nil)
)
