package eventagg

import (
	"errors"

	"github.com/dep2p/go-eventagg/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 服务生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("service not started")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("service already started")

	// ErrServiceStopped 服务已停止
	ErrServiceStopped = errors.New("service stopped")

	// ────────────────────────────────────────────────────────────────────────
	// 参数错误（均可用 errors.Is(err, ErrInvalidArgument) 判断）
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidArgument 参数无效
	ErrInvalidArgument = types.ErrInvalidArgument

	// ErrNilSubscriber 订阅者为空
	ErrNilSubscriber = types.ErrNilSubscriber

	// ErrNilMessage 消息为空
	ErrNilMessage = types.ErrNilMessage

	// ErrNilMarshal 线程封送函数为空
	ErrNilMarshal = types.ErrNilMarshal

	// ErrNilMessageType 消息类型为空
	ErrNilMessageType = types.ErrNilMessageType

	// ErrZeroSizeSubscriber 订阅者类型大小为零
	ErrZeroSizeSubscriber = types.ErrZeroSizeSubscriber

	// ────────────────────────────────────────────────────────────────────────
	// 钩子错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrHookAlreadySet 进程级钩子只能设置一次
	ErrHookAlreadySet = types.ErrHookAlreadySet
)
