// Package types 定义 EventAgg 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 eventagg 内部包。
//
// # 文件组织
//
//   - handler.go  - Handler 处理器声明（On / OnResult / OnError）
//   - ref.go      - SubjectRef 订阅者弱引用
//   - topology.go - MessageAdded / MessageRemoved 拓扑通知、诊断快照
//   - errors.go   - 公共错误定义、HandlerError
//
// # 处理器声明
//
// 订阅者通过方法表达式声明处理能力，总线据此建立 消息类型 → 处理器 映射：
//
//	type Panel struct{ name string }
//
//	func (p *Panel) OnRefresh(m Refresh) { ... }
//
//	func (p *Panel) Handlers() []types.Handler {
//	    return []types.Handler{types.On((*Panel).OnRefresh)}
//	}
//
// # 类型匹配
//
// 处理器注册的消息类型为接口时，所有实现该接口的消息都会投递给它；
// 注册为具体类型时只匹配完全相同的类型。
package types
