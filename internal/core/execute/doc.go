// Package execute 提供线程封送执行器
//
// 发布消息时，调用方传入的 Marshal 决定投递回调在何处执行。
// 本包提供三种内置执行器：
//
//   - Immediate: 在发布者 goroutine 上同步执行
//   - Background: 每个回调在独立 goroutine 中执行，并发数受限
//   - Loop: 单 goroutine 事件循环，所有回调串行执行（类似 UI 线程）
//
// # 使用示例
//
//	loop := execute.NewLoop(256)
//	loop.Start()
//	defer loop.Close(context.Background())
//
//	agg.Publish(msg, loop.Marshal)
//
// # Fx 模块
//
// Module 从统一配置创建 *Loop 与 *Background，
// 在 OnStart 启动事件循环，在 OnStop 按 StopTimeout 关闭二者。
package execute
