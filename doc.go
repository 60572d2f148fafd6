// Package eventagg 提供进程内事件聚合器
//
// 事件聚合器让发布者与订阅者彼此解耦：
// 订阅者声明自己能处理的消息类型，发布者广播消息，双方互不持有对方的引用。
// 聚合器只保存订阅者的弱引用，订阅者被回收后自动从聚合器中消失。
//
// # 核心概念
//
//   - Subscriber: 通过 Handlers() 显式声明处理器的订阅者
//   - Marshal: 发布时传入的线程封送函数，决定处理器在哪个 goroutine 上执行
//   - Filter: 过滤标签，带标签的处理器只接收标签相同的发布
//   - MessageAdded / MessageRemoved: 聚合器自身发布的拓扑通知
//
// # 快速开始
//
//	type View struct{ name string }
//
//	func (v *View) OnRefresh(m Refresh) { fmt.Println(v.name, m) }
//
//	func (v *View) Handlers() []eventagg.Handler {
//	    return []eventagg.Handler{eventagg.On((*View).OnRefresh)}
//	}
//
//	svc, err := eventagg.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Stop(ctx)
//
//	view := &View{name: "main"}
//	svc.Aggregator().Subscribe(view)
//
//	// 在当前 goroutine 上投递
//	eventagg.PublishOnCurrentThread(svc.Aggregator(), Refresh{})
//
//	// 在事件循环上投递并等待完成
//	eventagg.PublishOnLoop(svc.Aggregator(), svc.Loop(), Refresh{})
//
// # 返回值处理
//
// 进程级钩子在创建 Service 之前设置一次：
//
//	eventagg.SetHandlerResultProcessing(func(target, result any) {
//	    log.Printf("%T -> %v", target, result)
//	})
//
// # 配置
//
// 配置通过 config.Config 提供，支持 JSON 与 YAML：
//
//	cfg, err := config.FromYAML(data)
//	svc, err := eventagg.New(eventagg.WithConfig(cfg))
package eventagg
