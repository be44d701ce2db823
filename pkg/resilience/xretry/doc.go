// Package xretry 提供重试策略、退避策略及基于 retry-go 的重试执行器。
//
// 底层使用 [avast/retry-go/v5] 实现重试逻辑：
//   - RetryPolicy：最大尝试次数 + 逐次判断是否继续
//   - BackoffPolicy：两次尝试之间的等待时长
//
// 连接建立这类"固定次数 + 固定间隔"的场景：
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(10)),
//	    xretry.WithBackoffPolicy(xretry.NewFixedBackoff(3*time.Second)),
//	)
//	conn, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) (driver.Conn, error) {
//	    return dial(ctx)
//	})
//
// 用 NewPermanentError 包装的错误不会被重试。
// 等待期间 ctx 取消会立即结束重试。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
