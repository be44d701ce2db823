package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xchkit/pkg/lifecycle/xrun"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
	"github.com/omeyang/xchkit/pkg/storage/xchmodule"
)

func (st *appState) tokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "打印连接名与注册表键",
		Flags: configFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			conns, err := loadConnections(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(st.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTOKEN")
			for _, c := range conns {
				name := xclickhouse.NormalizeName(c.Name)
				fmt.Fprintf(tw, "%s\t%s\n", name, xclickhouse.Token(name))
			}
			return tw.Flush()
		},
	}
}

func (st *appState) pingCommand() *cli.Command {
	flags := append(configFlags(), &cli.DurationFlag{
		Name:  "timeout",
		Usage: "建立全部连接的总超时",
		Value: defaultTimeout,
	})
	return &cli.Command{
		Name:  "ping",
		Usage: "建立全部连接、健康检查并打印统计",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conns, err := loadConnections(cmd)
			if err != nil {
				return err
			}
			m, err := st.newModule(conns)
			if err != nil {
				return err
			}
			defer st.shutdown(m)

			startCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()
			startErr := m.Start(startCtx)

			st.printStats(ctx, m.Registry())
			if startErr != nil {
				fmt.Fprintf(st.stderr, "启动失败: %v\n", startErr)
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

// printStats 对每个已建立的连接做一次健康检查并输出统计。
func (st *appState) printStats(ctx context.Context, reg *xchmodule.Registry) {
	tw := tabwriter.NewWriter(st.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tATTEMPTS\tFAILURES\tOPEN\tIDLE")
	for _, name := range reg.Names() {
		ch, ok := reg.Get(name)
		if !ok {
			continue
		}
		status := "ok"
		if err := ch.Health(ctx); err != nil {
			status = err.Error()
		}
		s := ch.Stats()
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			name, status, s.ConnectAttempts, s.ConnectFailures, s.Pool.Open, s.Pool.Idle)
	}
	_ = tw.Flush()
}

func (st *appState) serveCommand() *cli.Command {
	flags := append(configFlags(), &cli.DurationFlag{
		Name:  "interval",
		Usage: "健康检查间隔",
		Value: defaultInterval,
	})
	return &cli.Command{
		Name:  "serve",
		Usage: "保持连接并周期性健康检查，直到收到退出信号",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			interval := cmd.Duration("interval")
			if interval <= 0 {
				return usagef("--interval 必须为正数，当前为 %s", interval)
			}
			conns, err := loadConnections(cmd)
			if err != nil {
				return err
			}
			m, err := st.newModule(conns)
			if err != nil {
				return err
			}

			probe := xrun.Ticker(interval, true, func(ctx context.Context) error {
				st.probe(ctx, m.Registry())
				return nil
			})
			err = m.Run(ctx, xrun.ServiceFunc(probe))
			if errors.Is(err, xrun.ErrSignal) {
				st.logger.Info(ctx, "xchctl stopped", xlog.Err(err))
				return nil
			}
			return err
		},
	}
}

// probe 检查全部连接，失败只记录日志，不终止 serve。
func (st *appState) probe(ctx context.Context, reg *xchmodule.Registry) {
	for _, name := range reg.Names() {
		ch, ok := reg.Get(name)
		if !ok {
			continue
		}
		if err := ch.Health(ctx); err != nil {
			st.logger.Warn(ctx, "clickhouse health check failed", xlog.Connection(name), xlog.Err(err))
			continue
		}
		st.logger.Debug(ctx, "clickhouse healthy", xlog.Connection(name))
	}
}

func (st *appState) shutdown(m *xchmodule.Module) {
	if err := m.Shutdown(context.Background()); err != nil {
		st.logger.Warn(context.Background(), "shutdown finished with errors", xlog.Err(err))
	}
}
