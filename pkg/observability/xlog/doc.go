// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 动态级别调整（运行时热更新）
//   - 强制 context 传递，方法签名只接受 slog.Attr
//   - 连接生命周期常用属性（connection、attempt、max_attempts）
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("debug").
//	    SetFormat("json").
//	    SetRotation("/var/log/app.log").
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// # 默认 Logger
//
// [Default] 惰性创建 stderr、Info 级别、text 格式的 Logger；
// [Discard] 返回丢弃所有输出的 Logger，常用于测试。
// 库代码应通过选项注入 Logger，而不是依赖 [Default]。
package xlog
