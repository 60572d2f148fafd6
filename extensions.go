package eventagg

import (
	"github.com/dep2p/go-eventagg/internal/core/execute"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              发布扩展
// ════════════════════════════════════════════════════════════════════════════

// PublishOnCurrentThread 在调用方 goroutine 上同步投递
func PublishOnCurrentThread(agg pkgif.EventAggregator, message interface{}, opts ...pkgif.PublishOpt) error {
	return agg.Publish(message, execute.Immediate, opts...)
}

// PublishOnBackgroundThread 在后台执行器上投递，立即返回
func PublishOnBackgroundThread(agg pkgif.EventAggregator, bg pkgif.Executor, message interface{}, opts ...pkgif.PublishOpt) error {
	if bg == nil {
		return types.ErrNilMarshal
	}
	return agg.Publish(message, bg.Marshal, opts...)
}

// PublishOnLoop 在事件循环上投递并等待投递完成
//
// 不可在事件循环自身的 goroutine 中调用。
func PublishOnLoop(agg pkgif.EventAggregator, loop pkgif.LoopExecutor, message interface{}, opts ...pkgif.PublishOpt) error {
	if loop == nil {
		return types.ErrNilMarshal
	}
	var sendErr error
	err := agg.Publish(message, func(action func()) {
		sendErr = loop.Send(action)
	}, opts...)
	if err != nil {
		return err
	}
	return sendErr
}

// BeginPublishOnLoop 把投递排入事件循环，立即返回
func BeginPublishOnLoop(agg pkgif.EventAggregator, loop pkgif.LoopExecutor, message interface{}, opts ...pkgif.PublishOpt) error {
	if loop == nil {
		return types.ErrNilMarshal
	}
	var postErr error
	err := agg.Publish(message, func(action func()) {
		postErr = loop.Post(action)
	}, opts...)
	if err != nil {
		return err
	}
	return postErr
}

// PublishOnLoopAsync 把投递排入事件循环，返回的通道在投递完成后关闭
func PublishOnLoopAsync(agg pkgif.EventAggregator, loop pkgif.LoopExecutor, message interface{}, opts ...pkgif.PublishOpt) (<-chan struct{}, error) {
	if loop == nil {
		return nil, types.ErrNilMarshal
	}
	done := make(chan struct{})
	var postErr error
	err := agg.Publish(message, func(action func()) {
		postErr = loop.Post(func() {
			defer close(done)
			action()
		})
	}, opts...)
	if err != nil {
		return nil, err
	}
	if postErr != nil {
		return nil, postErr
	}
	return done, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              按类型查询
// ════════════════════════════════════════════════════════════════════════════

// HandlerCount 返回消息类型 M 在给定过滤标签下的存活处理器数量
func HandlerCount[M any](agg pkgif.EventAggregator, filter string) int {
	return agg.HandlerCountFor(types.TypeOf[M](), filter)
}

// HandlerExists 消息类型 M 在给定过滤标签下是否存在存活处理器
func HandlerExists[M any](agg pkgif.EventAggregator, filter string) bool {
	return agg.HandlerExistsFor(types.TypeOf[M](), filter)
}

// ActiveFilters 返回消息类型 M 当前所有非空过滤标签
func ActiveFilters[M any](agg pkgif.EventAggregator) []string {
	return agg.ActiveFiltersForType(types.TypeOf[M]())
}

// SetFilterFor 设置订阅者对消息类型 M 的过滤标签
func SetFilterFor[M any](agg pkgif.EventAggregator, subscriber pkgif.Subscriber, filter string) error {
	return agg.SetFilter(subscriber, types.TypeOf[M](), filter)
}
