package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xchkit/pkg/config/xconf"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
	"github.com/omeyang/xchkit/pkg/storage/xchmodule"
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "连接配置文件 (.yaml/.yml/.json)",
			Sources: cli.EnvVars("XCHCTL_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "配置文件中连接列表的路径",
			Value: defaultConfigKey,
		},
	}
}

// loadConnections 读取 --config 指定文件中 --key 处的连接列表。
func loadConnections(cmd *cli.Command) ([]xclickhouse.Config, error) {
	path := cmd.String("config")
	if path == "" {
		return nil, usagef("缺少 --config")
	}
	key := cmd.String("key")

	cfg, err := xconf.New(path)
	switch {
	case errors.Is(err, xconf.ErrUnsupportedFormat):
		return nil, usagef("%v", err)
	case err != nil:
		return nil, err
	}

	conns, err := xchmodule.LoadFile(cfg, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(conns) == 0 {
		return nil, usagef("%s 的 %s 下没有连接", path, key)
	}
	return conns, nil
}
