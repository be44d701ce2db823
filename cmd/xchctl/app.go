package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xchkit/pkg/lifecycle/xrun"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
	"github.com/omeyang/xchkit/pkg/storage/xchmodule"
)

const (
	defaultConfigKey = "clickhouse.connections"
	defaultInterval  = 30 * time.Second
	defaultTimeout   = 2 * time.Minute
)

// appState 是一次命令执行共享的状态，Before 钩子填充 logger。
type appState struct {
	stdout io.Writer
	stderr io.Writer

	logger  xlog.Logger
	cleanup func() error

	connectOptions []xclickhouse.Option
	runOptions     []xrun.Option
}

type appOption func(*appState)

// withConnectOptions 追加建连选项，测试用于替换 Dialer。
func withConnectOptions(opts ...xclickhouse.Option) appOption {
	return func(s *appState) { s.connectOptions = append(s.connectOptions, opts...) }
}

// withRunOptions 追加 serve 使用的 xrun 选项。
func withRunOptions(opts ...xrun.Option) appOption {
	return func(s *appState) { s.runOptions = append(s.runOptions, opts...) }
}

func newApp(stdout, stderr io.Writer, opts ...appOption) *cli.Command {
	st := &appState{
		stdout: stdout,
		stderr: stderr,
		logger: xlog.Discard(),
	}
	for _, opt := range opts {
		opt(st)
	}

	return &cli.Command{
		Name:      "xchctl",
		Usage:     "命名 ClickHouse 连接运维工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "日志级别 (debug/info/warn/error)",
				Value:   "info",
				Sources: cli.EnvVars("XCHCTL_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径，按大小轮转",
			},
		},
		Before: st.setupLogger,
		After:  st.closeLogger,
		Commands: []*cli.Command{
			st.tokensCommand(),
			st.pingCommand(),
			st.serveCommand(),
		},
		// 退出码由 run 统一映射，不允许框架直接 os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func (st *appState) setupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	b := xlog.New().
		SetOutput(st.stderr).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format"))
	if file := cmd.String("log-file"); file != "" {
		b.SetRotation(file)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return ctx, usagef("日志配置无效: %v", err)
	}
	st.logger, st.cleanup = logger, cleanup
	return ctx, nil
}

func (st *appState) closeLogger(context.Context, *cli.Command) error {
	if st.cleanup == nil {
		return nil
	}
	return st.cleanup()
}

// newModule 按配置文件中的顺序注册全部连接。
func (st *appState) newModule(conns []xclickhouse.Config) (*xchmodule.Module, error) {
	m := xchmodule.New(
		xchmodule.WithLogger(st.logger),
		xchmodule.WithConnectOptions(st.connectOptions...),
		xchmodule.WithRunOptions(append([]xrun.Option{xrun.WithName("xchctl")}, st.runOptions...)...),
	)
	for _, c := range conns {
		if err := m.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
