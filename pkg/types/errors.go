// Package types 定义 EventAgg 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
	"reflect"
)

// ============================================================================
//                              参数错误
// ============================================================================

var (
	// ErrInvalidArgument 参数无效（所有参数错误的根错误）
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNilSubscriber 订阅者为空
	ErrNilSubscriber = fmt.Errorf("%w: subscriber is nil", ErrInvalidArgument)

	// ErrNilMessage 消息为空
	ErrNilMessage = fmt.Errorf("%w: message is nil", ErrInvalidArgument)

	// ErrNilMarshal 线程封送函数为空
	ErrNilMarshal = fmt.Errorf("%w: marshal is nil", ErrInvalidArgument)

	// ErrNilMessageType 消息类型为空
	ErrNilMessageType = fmt.Errorf("%w: message type is nil", ErrInvalidArgument)
)

// ============================================================================
//                              订阅者声明错误
// ============================================================================

var (
	// ErrInvalidHandler 处理器未通过 On/OnResult/OnError 构造
	ErrInvalidHandler = fmt.Errorf("%w: handler is not initialized", ErrInvalidArgument)

	// ErrNonPointerSubscriber 订阅者不是处理器声明的指针类型
	ErrNonPointerSubscriber = fmt.Errorf("%w: subscriber must be a non-nil pointer", ErrInvalidArgument)

	// ErrZeroSizeSubscriber 订阅者类型大小为零
	//
	// 零大小类型的所有实例共享同一地址，无法区分身份，也无法建立弱引用。
	ErrZeroSizeSubscriber = fmt.Errorf("%w: subscriber type has zero size", ErrInvalidArgument)

	// ErrSubjectMismatch 处理器声明的接收者类型与订阅者不一致
	ErrSubjectMismatch = fmt.Errorf("%w: handler declared for a different subscriber type", ErrInvalidArgument)

	// ErrMessageMismatch 消息无法转换为处理器声明的类型
	ErrMessageMismatch = errors.New("message type does not match handler")
)

// ============================================================================
//                              钩子错误
// ============================================================================

var (
	// ErrHookAlreadySet 进程级钩子只能设置一次
	ErrHookAlreadySet = errors.New("handler result processing already configured")
)

// ============================================================================
//                              处理器调用错误
// ============================================================================

// HandlerError 订阅者处理器调用失败
//
// 由处理器 panic 或 OnError 处理器返回的错误包装而来。
// 不持有订阅者本身，避免延长其生命周期。
type HandlerError struct {
	// RecordID 订阅记录 ID
	RecordID string

	// SubjectType 订阅者类型
	SubjectType reflect.Type

	// MessageType 处理器注册的消息类型
	MessageType reflect.Type

	// Panicked 是否由 panic 引起
	Panicked bool

	// Cause 原始错误
	Cause error
}

// Error 实现 error 接口
func (e *HandlerError) Error() string {
	kind := "failed"
	if e.Panicked {
		kind = "panicked"
	}
	return fmt.Sprintf("handler %v for %v %s: %v", e.SubjectType, e.MessageType, kind, e.Cause)
}

// Unwrap 返回原始错误
func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// PanicError 将 recover 得到的值转换为 error
func PanicError(v interface{}) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
