// Package types 定义 EventAgg 公共类型
//
// 本文件定义总线自身的拓扑通知消息。
package types

import "reflect"

// ============================================================================
//                              拓扑通知
// ============================================================================

// MessageAdded 某个 (类型, 过滤标签) 处理能力出现
//
// 由总线在订阅、修改过滤标签时发布到自身。
// 与普通消息一样投递，没有特殊通道。
type MessageAdded struct {
	// Type 处理器注册的消息类型
	Type reflect.Type

	// Filter 过滤标签（"" 表示无过滤）
	Filter string
}

// MessageRemoved 某个 (类型, 过滤标签) 处理能力消失
//
// 由取消订阅、修改过滤标签、回收已失效订阅者触发。
type MessageRemoved struct {
	// Type 处理器注册的消息类型
	Type reflect.Type

	// Filter 过滤标签（"" 表示无过滤）
	Filter string
}

// ============================================================================
//                              诊断信息
// ============================================================================

// SubscriptionInfo 订阅记录快照
type SubscriptionInfo struct {
	// ID 订阅记录 ID
	ID string

	// SubjectType 订阅者类型
	SubjectType string

	// Alive 订阅者是否仍可达
	Alive bool

	// Handlers 处理器列表（按消息类型名排序）
	Handlers []HandlerInfo
}

// HandlerInfo 单个处理器快照
type HandlerInfo struct {
	// MessageType 消息类型名
	MessageType string

	// Filter 过滤标签
	Filter string
}
