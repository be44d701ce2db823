// xchctl 是命名 ClickHouse 连接的运维命令行工具。
//
// 用法:
//
//	xchctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	--log-level    日志级别 debug/info/warn/error (默认: info)
//	--log-format   日志格式 text/json (默认: text)
//	--log-file     日志文件路径，设置后按大小轮转 (默认: stderr)
//
// 命令:
//
//	tokens   打印每个连接名对应的注册表键
//	ping     建立全部连接并打印统计，随后关闭
//	serve    保持连接并按间隔健康检查，直到收到 SIGINT/SIGTERM
//
// 连接列表从 --config 指定文件的 --key 路径读取（默认 clickhouse.connections）。
//
// 退出码:
//
//	0: 成功
//	1: 运行失败（如连接重试用尽）
//	2: 参数错误（缺少 --config、无效日志级别等）
//
// 示例:
//
//	xchctl tokens --config clickhouse.yaml
//	xchctl --log-format json ping --config clickhouse.yaml --timeout 2m
//	xchctl --log-file /var/log/xchctl.log serve --config clickhouse.yaml --interval 10s
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	os.Exit(run(context.Background(), app, os.Args, os.Stderr))
}

// exitError 表示命令已完成输出，只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run 执行 app 并把错误映射为退出码。
func run(ctx context.Context, app *cli.Command, args []string, stderr io.Writer) int {
	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}

// isCLIUsageError 识别 urfave/cli 与 flag 包产生的参数解析错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, s := range []string{
		"flag provided but not defined",
		"invalid value",
		"flag needs an argument",
		"No help topic for",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
