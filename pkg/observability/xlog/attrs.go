package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key 常量，保持跨包字段名一致。
const (
	// KeyError 错误字段的标准 key
	KeyError = "error"

	// KeyDuration 耗时字段的标准 key
	KeyDuration = "duration"

	// KeyComponent 组件名称字段的标准 key
	KeyComponent = "component"

	// KeyOperation 操作名称字段的标准 key
	KeyOperation = "operation"

	// KeyConnection 连接名称字段的标准 key
	KeyConnection = "connection"

	// KeyAttempt 当前尝试次数字段的标准 key（从 1 开始）
	KeyAttempt = "attempt"

	// KeyMaxAttempts 最大尝试次数字段的标准 key
	KeyMaxAttempts = "max_attempts"
)

// Err 创建错误属性
//
// 如果 err 为 nil，返回空属性（会被 slog 忽略）。
//
//	if err != nil {
//	    logger.Error(ctx, "operation failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出人类可读格式（如 "1.5s"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Connection 创建连接名属性
func Connection(name string) slog.Attr {
	return slog.String(KeyConnection, name)
}

// Attempt 创建尝试次数属性
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxAttempts 创建最大尝试次数属性
func MaxAttempts(n int) slog.Attr {
	return slog.Int(KeyMaxAttempts, n)
}
