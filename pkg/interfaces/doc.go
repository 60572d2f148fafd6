// Package interfaces 定义 EventAgg 的公共接口
//
// 本包只包含接口与函数类型，数据结构定义在 pkg/types 包中：
//   - aggregator.go - EventAggregator 事件聚合器、Subscriber 订阅者、
//     Marshal / Executor / LoopExecutor 投递器、ResultHook / FailureHook 钩子
//
// # 依赖方向
//
//	eventagg → internal/core/* → pkg/interfaces → pkg/types
//
// 禁止反向依赖。
package interfaces
