package xretry

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Retryer 重试执行器
//
// Retryer 组合了 RetryPolicy 和 BackoffPolicy，底层使用 avast/retry-go/v5。
// Retryer 本身无状态，可在多个 goroutine 间共享；每次 Do 的计数相互独立。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, err error)
}

// RetryerOption 执行器配置选项
type RetryerOption func(*Retryer)

// WithRetryPolicy 设置重试策略，nil 被忽略
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy 设置退避策略，nil 被忽略
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 设置重试回调，attempt 从 1 开始，nil 被忽略。
//
// 回调的触发时机由 retry-go 决定；需要"每次失败恰好一次"语义的调用方
// 应在被重试的函数内部自行记录。
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 创建重试执行器，默认 FixedRetry(3) + FixedBackoff(100ms)
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		retryPolicy:   NewFixedRetry(3),
		backoffPolicy: NewFixedBackoff(100 * time.Millisecond),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Do 执行带重试的操作
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := DoWithResult(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoWithResult 执行带重试的操作（有返回值）
//
// 返回最后一次失败的错误。等待期间 ctx 被取消时，返回的错误同时
// 满足 errors.Is(err, ctx.Err()) 并保留最后一次失败的原因。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	switch {
	case r == nil:
		return zero, ErrNilRetryer
	case ctx == nil:
		return zero, ErrNilContext
	case fn == nil:
		return zero, ErrNilFunc
	}

	var lastErr error
	v, err := retry.NewWithData[T](r.buildOptions(ctx)...).Do(func() (T, error) {
		v, err := fn(ctx)
		if err != nil {
			lastErr = err
		}
		return v, err
	})
	if err == nil {
		return v, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if !errors.Is(err, ctxErr) {
			return zero, errors.Join(ctxErr, err)
		}
		if lastErr != nil && !errors.Is(err, lastErr) {
			return zero, errors.Join(err, lastErr)
		}
	}
	return zero, err
}

// buildOptions 构建 retry-go 的选项
func (r *Retryer) buildOptions(ctx context.Context) []retry.Option {
	retryPolicy := r.retryPolicy
	if retryPolicy == nil {
		retryPolicy = NewFixedRetry(3)
	}
	backoffPolicy := r.backoffPolicy
	if backoffPolicy == nil {
		backoffPolicy = NewFixedBackoff(0)
	}

	opts := make([]retry.Option, 0, 6)
	opts = append(opts, retry.Context(ctx))

	if maxAttempts := retryPolicy.MaxAttempts(); maxAttempts <= 0 {
		opts = append(opts, retry.UntilSucceeded())
	} else {
		opts = append(opts, retry.Attempts(uint(maxAttempts)))
	}

	// attemptCount 表示已失败次数（1-based），每次 Do 独立
	var attemptCount atomic.Int64
	opts = append(opts, retry.RetryIf(func(err error) bool {
		count := int(attemptCount.Add(1))
		if !retry.IsRecoverable(err) {
			return false
		}
		return retryPolicy.ShouldRetry(ctx, count, err)
	}))

	opts = append(opts, retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
		return backoffPolicy.NextDelay(clampUint(n))
	}))

	if r.onRetry != nil {
		onRetry := r.onRetry
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			// retry-go 的 n 从 0 开始
			onRetry(clampUint(n)+1, err)
		}))
	}

	opts = append(opts, retry.LastErrorOnly(true))
	return opts
}

func clampUint(n uint) int {
	if n > uint(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}
