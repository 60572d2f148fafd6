// Package aggregator 实现进程内事件聚合器
//
// 发布者与订阅者互不持有对方的引用：
//   - 订阅者通过 Handlers() 显式声明能处理的消息类型
//   - 聚合器只保存订阅者的弱引用，从不延长其生命周期
//   - 订阅者被回收后，其记录在下一次发布时自动移除
//   - 处理器可以携带过滤标签，只接收标签相同的发布
//
// # 快速开始
//
//	type View struct{ title string }
//
//	func (v *View) HandleRefresh(m Refresh) { ... }
//
//	func (v *View) Handlers() []types.Handler {
//	    return []types.Handler{types.On((*View).HandleRefresh)}
//	}
//
//	agg, _ := aggregator.New(aggregator.DefaultConfig())
//	view := &View{}
//	agg.Subscribe(view)
//	agg.Publish(Refresh{}, execute.Immediate)
//
// # 过滤标签
//
// "" 表示无过滤。无过滤的处理器接收所有发布；
// 带过滤的处理器只接收 PublishFilter 与之完全相同的发布。
// HandlerCountFor / HandlerExistsFor 按完全相等统计。
//
// # 拓扑通知
//
// 某个 (类型, 过滤标签) 组合第一次出现时，聚合器向自身发布 types.MessageAdded；
// 最后一个持有者消失时发布 types.MessageRemoved。修改过滤标签总是依次发布二者。
// 通知在触发修改的 goroutine 上同步投递，此时不持有任何锁。
//
// # 失败策略
//
//   - isolate（默认）：逐个处理器捕获 panic 与错误，交给失败钩子，继续投递
//   - propagate：第一个失败以 *types.HandlerError 形式 panic，中止本次投递
//
// # 并发安全
//
// 注册表的每次结构性操作只在 sync.Mutex 内完成；
// 发布时取快照后释放锁，处理器执行期间不持有锁，可任意重入。
// 过滤标签以 atomic.Value 保存，投递路径无锁读取。
package aggregator
