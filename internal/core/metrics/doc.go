// Package metrics 提供聚合器监控指标收集
//
// metrics 模块基于 Prometheus client_golang 记录：
//   - 发布次数（按消息类型）
//   - 处理器调用次数、失败次数、耗时分布（按注册类型）
//   - 回收的失效订阅数
//   - 拓扑通知数（added / removed）
//   - 当前订阅记录数
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	reporter, err := metrics.NewPromReporter(reg, "eventagg")
//	if err != nil {
//	    return err
//	}
//	reporter.LogPublish("main.Refresh")
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    fx.Provide(func() prometheus.Registerer { return reg }),
//	    metrics.Module,
//	)
//
// 配置关闭指标时模块提供 NopReporter，调用方无需判空。
package metrics
