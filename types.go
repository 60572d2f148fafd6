package eventagg

import (
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// EventAggregator 事件聚合器接口
	EventAggregator = pkgif.EventAggregator

	// Subscriber 订阅者接口
	Subscriber = pkgif.Subscriber

	// Marshal 线程封送函数
	Marshal = pkgif.Marshal

	// Handler 处理器声明
	Handler = types.Handler

	// HandlerError 处理器调用失败
	HandlerError = types.HandlerError

	// MessageAdded 处理能力出现通知
	MessageAdded = types.MessageAdded

	// MessageRemoved 处理能力消失通知
	MessageRemoved = types.MessageRemoved

	// SubscriptionInfo 订阅记录快照
	SubscriptionInfo = types.SubscriptionInfo
)

// On 声明无返回值的处理器，见 types.On
func On[S any, M any](fn func(*S, M)) Handler {
	return types.On(fn)
}

// OnResult 声明带返回值的处理器，见 types.OnResult
func OnResult[S any, M any](fn func(*S, M) interface{}) Handler {
	return types.OnResult(fn)
}

// OnError 声明可能失败的处理器，见 types.OnError
func OnError[S any, M any](fn func(*S, M) error) Handler {
	return types.OnError(fn)
}

// SubscribeFilter 订阅时设置初始过滤标签
func SubscribeFilter(filter string) pkgif.SubscribeOpt {
	return pkgif.SubscribeFilter(filter)
}

// PublishFilter 发布时携带过滤标签
func PublishFilter(filter string) pkgif.PublishOpt {
	return pkgif.PublishFilter(filter)
}
