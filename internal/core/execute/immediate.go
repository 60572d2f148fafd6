package execute

import pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"

// Immediate 在调用方 goroutine 上同步执行 action
//
// 可直接作为 pkgif.Marshal 使用。
func Immediate(action func()) {
	action()
}

// 确保 Immediate 满足 Marshal 签名
var _ pkgif.Marshal = Immediate

// immediateExecutor 将 Immediate 包装为 Executor
type immediateExecutor struct{}

// Marshal 实现 pkgif.Executor
func (immediateExecutor) Marshal(action func()) {
	action()
}

// Current 返回同步执行器
func Current() pkgif.Executor {
	return immediateExecutor{}
}
