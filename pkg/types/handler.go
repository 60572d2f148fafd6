// Package types 定义 EventAgg 公共类型
//
// 本文件定义订阅者处理器声明。
package types

import (
	"fmt"
	"reflect"
)

// ============================================================================
//                              Handler - 处理器声明
// ============================================================================

// Handler 订阅者对某一消息类型的处理能力
//
// Handler 通过 On / OnResult / OnError 构造，取代运行时扫描接口元数据：
// 订阅者在 Handlers() 中显式列出自己能处理的消息类型。
//
// 处理函数应使用方法表达式，例如：
//
//	func (v *View) Handlers() []types.Handler {
//	    return []types.Handler{
//	        types.On((*View).HandleRefresh),
//	        types.OnResult((*View).HandleQuery),
//	    }
//	}
//
// 方法表达式不捕获接收者，总线因此不会持有订阅者。
// 捕获了接收者的闭包会让订阅者永远无法被回收。
type Handler struct {
	messageType reflect.Type
	subjectType reflect.Type
	bind        func(subject interface{}) (SubjectRef, bool)
	invoke      func(subject, message interface{}) (interface{}, error)
}

// On 声明无返回值的处理器
func On[S any, M any](fn func(*S, M)) Handler {
	if fn == nil {
		return Handler{}
	}
	return newHandler(func(s *S, m M) (interface{}, error) {
		fn(s, m)
		return nil, nil
	})
}

// OnResult 声明带返回值的处理器
//
// 非 nil 返回值交给 HandlerResultProcessing 钩子。
func OnResult[S any, M any](fn func(*S, M) interface{}) Handler {
	if fn == nil {
		return Handler{}
	}
	return newHandler(func(s *S, m M) (interface{}, error) {
		return fn(s, m), nil
	})
}

// OnError 声明可能失败的处理器
//
// 返回的错误按总线的失败策略处理（隔离或传播）。
func OnError[S any, M any](fn func(*S, M) error) Handler {
	if fn == nil {
		return Handler{}
	}
	return newHandler(func(s *S, m M) (interface{}, error) {
		return nil, fn(s, m)
	})
}

func newHandler[S any, M any](fn func(*S, M) (interface{}, error)) Handler {
	return Handler{
		messageType: reflect.TypeFor[M](),
		subjectType: reflect.TypeFor[*S](),
		bind: func(subject interface{}) (SubjectRef, bool) {
			p, ok := subject.(*S)
			if !ok || p == nil {
				return nil, false
			}
			return NewWeakRef(p), true
		},
		invoke: func(subject, message interface{}) (interface{}, error) {
			s, ok := subject.(*S)
			if !ok {
				return nil, fmt.Errorf("%w: subject %T", ErrSubjectMismatch, subject)
			}
			m, ok := message.(M)
			if !ok {
				return nil, fmt.Errorf("%w: got %T, want %v", ErrMessageMismatch, message, reflect.TypeFor[M]())
			}
			return fn(s, m)
		},
	}
}

// Valid 处理器是否已初始化
func (h Handler) Valid() bool {
	return h.invoke != nil && h.messageType != nil
}

// MessageType 返回处理器注册的消息类型
func (h Handler) MessageType() reflect.Type {
	return h.messageType
}

// SubjectType 返回处理器声明的订阅者类型（指针类型）
func (h Handler) SubjectType() reflect.Type {
	return h.subjectType
}

// Bind 为订阅者创建弱引用
//
// subject 必须是处理器声明的 *S，且 S 不能是零大小类型。
func (h Handler) Bind(subject interface{}) (SubjectRef, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandler
	}
	if h.subjectType.Elem().Size() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrZeroSizeSubscriber, h.subjectType)
	}
	ref, ok := h.bind(subject)
	if !ok {
		return nil, fmt.Errorf("%w: got %T, handler expects %v", ErrNonPointerSubscriber, subject, h.subjectType)
	}
	return ref, nil
}

// Invoke 在订阅者上调用处理器
func (h Handler) Invoke(subject, message interface{}) (interface{}, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandler
	}
	return h.invoke(subject, message)
}

// TypeOf 返回 T 的 reflect.Type
//
// 用于 HandlerCountFor / SetFilter 等按类型查询的接口：
//
//	agg.HandlerCountFor(types.TypeOf[RefreshMessage](), "")
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
