package xrun

import (
	"context"
	"time"
)

// Ticker 返回按 interval 周期执行 fn 的服务函数。
//
// immediate 为 true 时启动即执行一次。fn 返回错误时服务退出并返回该错误；
// ctx 取消时返回 ctx.Err()。interval 非正数时返回 ErrInvalidInterval。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}

		if immediate {
			// 已取消的 ctx 不触发首次执行
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
