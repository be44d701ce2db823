// Package xrun 提供基于 errgroup 的服务生命周期编排。
//
// Group 并发运行一组服务，任一服务返回错误时取消其余服务；
// RunServicesWithOptions 在 Group 之上附加系统信号监听，
// 收到信号时以 *SignalError 作为退出原因返回。
//
// 典型用法（连接模块的 Run 即基于此实现）：
//
//	err := xrun.RunServicesWithOptions(ctx, []xrun.Option{
//	    xrun.WithName("xchctl"),
//	    xrun.WithLogger(logger),
//	}, xrun.ServiceFunc(xrun.Ticker(30*time.Second, true, probe)))
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
package xrun
