// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// xmetrics 仅定义最小化接口：Observer/Span/Attr，业务代码只依赖接口；
// 默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xclickhouse",
//		Operation: "connect",
//		Kind:      xmetrics.KindClient,
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// 统一指标：xchkit.operation.total、xchkit.operation.duration，
// 属性为 component / operation / status。
package xmetrics
