package xlog

import (
	"io"
	"sync"
)

var (
	defaultOnce   sync.Once
	defaultLogger LoggerWithLevel
)

// Default 返回进程级默认 Logger（stderr，Info 级别，text 格式）。
//
// 懒初始化，并发安全。仅作为未注入 Logger 时的兜底，
// 服务端推荐依赖注入（显式持有 Logger）。
func Default() LoggerWithLevel {
	defaultOnce.Do(func() {
		// 默认参数不会产生配置错误
		defaultLogger, _, _ = New().Build()
	})
	return defaultLogger
}

// Discard 返回丢弃所有输出的 Logger。
func Discard() LoggerWithLevel {
	l, _, _ := New().SetOutput(io.Discard).Build()
	return l
}
