// Package xchmodule 管理应用内全部命名 ClickHouse 连接的生命周期。
//
// 生命周期分为三个显式阶段：
//
//	注册（Register/RegisterAsync/Provide） → Start → 运行期只读查找 → Shutdown
//
// Start 为每个连接名启动独立的 goroutine：解析配置、调用 xclickhouse.Connect，
// 成功的连接按 Token 发布到 Registry。一个名称的失败不会取消或拖慢其他名称的
// 重试；所有致命错误以 errors.Join 汇总返回，应用应当中止启动。
//
// Shutdown 并发关闭每个注册名称对应的连接，从未建立的连接直接跳过，
// 关闭失败只记录日志，不阻塞其他连接。
//
//	m := xchmodule.New(xchmodule.WithLogger(logger))
//	_ = m.Register(xclickhouse.Config{DSN: dsn})
//	_ = m.Provide("settings", settings)
//	_ = m.RegisterAsync(xchmodule.AsyncOptions{
//	    Name:   "logs",
//	    Inject: []string{"settings"},
//	    Factory: func(ctx context.Context, deps xchmodule.Deps) (xclickhouse.Config, error) {
//	        s, err := xchmodule.Lookup[*Settings](deps, "settings")
//	        if err != nil {
//	            return xclickhouse.Config{}, err
//	        }
//	        return xclickhouse.Config{DSN: s.LogsDSN}, nil
//	    },
//	})
//	err := m.Run(ctx, httpService)
package xchmodule
