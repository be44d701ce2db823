// Package xclickhouse 负责单个命名 ClickHouse 连接的配置、命名与建立。
//
// # 设计理念
//
// 协议通信完全交给 clickhouse-go，本包只做三件事：
//   - 配置解析：Config 在厂商参数之外携带名称与重试策略，Effective 补齐默认值
//   - 命名：Token 将连接名映射为注册表键，"" 与 "default" 共用同一个键
//   - 建连：Connect 打开连接后立即 Ping，失败时按固定间隔重试
//
// # 重试语义
//
// 每次尝试都会新建连接并 Ping；失败的半成品连接立即关闭，并输出一条
// error 日志（含 connection、attempt、max_attempts，VerboseRetryLog 时附带
// 失败原因）。k 次失败后成功意味着 k+1 次建连与 k 条日志。次数用尽返回
// *ConnectError，errors.Is(err, ErrRetryExhausted) 成立。
//
// 厂商参数错误（如 DSN 无法解析）属于配置错误，不参与重试。
//
// # 快速开始
//
//	ch, err := xclickhouse.Connect(ctx, xclickhouse.Config{
//	    Name:          "logs",
//	    DSN:           "clickhouse://default@127.0.0.1:9000/logs",
//	    RetryAttempts: 3,
//	    RetryDelay:    xclickhouse.Delay(time.Second),
//	}, xclickhouse.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer ch.Close()
//
//	rows, err := ch.Client().Query(ctx, "SELECT 1")
package xclickhouse
