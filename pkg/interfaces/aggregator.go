// Package interfaces 定义 EventAgg 公共接口
//
// 本文件定义 EventAggregator 接口，提供松耦合的消息发布订阅功能。
package interfaces

import (
	"reflect"

	"github.com/dep2p/go-eventagg/pkg/types"
)

// EventAggregator 定义事件聚合器接口
//
// 订阅者声明自己能处理的消息类型，发布者把消息广播给所有仍然存活、
// 且类型与过滤标签匹配的订阅者，双方互不持有对方的引用。
type EventAggregator interface {
	// Subscribe 订阅者注册其 Handlers() 声明的所有消息类型
	//
	// 同一实例重复订阅为空操作。
	Subscribe(subscriber Subscriber, opts ...SubscribeOpt) error

	// Unsubscribe 取消订阅者的全部订阅
	Unsubscribe(subscriber Subscriber) error

	// Publish 发布消息
	//
	// marshal 决定投递回调在何处、何时执行。
	Publish(message interface{}, marshal Marshal, opts ...PublishOpt) error

	// SetFilter 设置订阅者某消息类型的过滤标签
	SetFilter(subscriber Subscriber, messageType reflect.Type, filter string) error

	// HandlerExistsFor 是否存在该 (类型, 过滤标签) 的存活处理器
	HandlerExistsFor(messageType reflect.Type, filter string) bool

	// HandlerCountFor 该 (类型, 过滤标签) 的存活处理器数量
	HandlerCountFor(messageType reflect.Type, filter string) int

	// ActiveFiltersForType 返回该类型当前所有非空过滤标签
	ActiveFiltersForType(messageType reflect.Type) []string
}

// Subscriber 定义订阅者接口
//
// Handlers 返回的处理器必须由 types.On / OnResult / OnError 构造，
// 且声明的接收者类型与订阅者本身一致。
//
// 订阅者必须是指向非零大小类型的指针：零大小类型（如 struct{}）的实例
// 共享同一地址，Subscribe 对其返回 types.ErrZeroSizeSubscriber。
type Subscriber interface {
	Handlers() []types.Handler
}

// Marshal 线程封送函数
//
// 接收一个无参回调，决定同步执行、调度到指定执行器或异步执行。
type Marshal func(action func())

// Executor 定义可作为 Marshal 使用的执行器
type Executor interface {
	// Marshal 调度 action
	Marshal(action func())
}

// LoopExecutor 定义单 goroutine 执行器（类似 UI 线程）
type LoopExecutor interface {
	Executor

	// Post 异步投递 action
	Post(action func()) error

	// Send 投递 action 并等待其执行完成
	//
	// 不可在执行器自身的 goroutine 中调用。
	Send(action func()) error
}

// ============================================================================
//                              钩子
// ============================================================================

// ResultHook 处理器返回值处理钩子
//
// target 为订阅者，result 为处理器的非 nil 返回值。
type ResultHook func(target, result interface{})

// FailureHook 处理器失败处理钩子（隔离策略下使用）
type FailureHook func(err *types.HandlerError)

// ============================================================================
//                              选项
// ============================================================================

// SubscribeOpt 订阅选项函数类型
type SubscribeOpt func(*SubscribeSettings)

// PublishOpt 发布选项函数类型
type PublishOpt func(*PublishSettings)

// SubscribeSettings 订阅设置（导出以供实现使用）
type SubscribeSettings struct {
	Filter string
}

// PublishSettings 发布设置（导出以供实现使用）
type PublishSettings struct {
	Filter string
}

// SubscribeFilter 订阅时为所有处理器设置初始过滤标签
func SubscribeFilter(filter string) SubscribeOpt {
	return func(s *SubscribeSettings) {
		s.Filter = filter
	}
}

// PublishFilter 发布时携带过滤标签
func PublishFilter(filter string) PublishOpt {
	return func(s *PublishSettings) {
		s.Filter = filter
	}
}
