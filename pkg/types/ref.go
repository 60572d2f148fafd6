// Package types 定义 EventAgg 公共类型
//
// 本文件定义订阅者的弱引用。
package types

import (
	"reflect"
	"weak"
)

// SubjectRef 订阅者的非持有引用
//
// 总线只观察订阅者的存活状态，从不延长其生命周期。
// 订阅者的其他持有者全部释放后，Value 在下一次 GC 完成时返回 false。
type SubjectRef interface {
	// Value 解析引用，订阅者已被回收时返回 (nil, false)
	Value() (interface{}, bool)

	// Type 返回订阅者类型（指针类型）
	Type() reflect.Type
}

// weakRef 基于 weak.Pointer 的 SubjectRef 实现
type weakRef[S any] struct {
	p weak.Pointer[S]
}

// NewWeakRef 为 *S 创建弱引用
func NewWeakRef[S any](subject *S) SubjectRef {
	return weakRef[S]{p: weak.Make(subject)}
}

// Value 解析引用
func (r weakRef[S]) Value() (interface{}, bool) {
	v := r.p.Value()
	if v == nil {
		return nil, false
	}
	return v, true
}

// Type 返回 *S
func (r weakRef[S]) Type() reflect.Type {
	return reflect.TypeFor[*S]()
}

// Matches 判断引用是否指向 subject（按身份比较，而非相等性）
func Matches(ref SubjectRef, subject interface{}) bool {
	if ref == nil || subject == nil {
		return false
	}
	v, ok := ref.Value()
	if !ok {
		return false
	}
	return v == subject
}
