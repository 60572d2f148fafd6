package eventagg

import (
	"sync"

	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// resultProcessing 进程级返回值钩子
var resultProcessing struct {
	mu   sync.Mutex
	set  bool
	hook pkgif.ResultHook
}

// SetHandlerResultProcessing 设置进程级处理器返回值钩子
//
// 只能设置一次，第二次调用返回 ErrHookAlreadySet。
// 钩子在 New 时注入聚合器，因此必须在创建 Service 之前设置。
func SetHandlerResultProcessing(hook pkgif.ResultHook) error {
	if hook == nil {
		return types.ErrInvalidArgument
	}

	resultProcessing.mu.Lock()
	defer resultProcessing.mu.Unlock()

	if resultProcessing.set {
		return types.ErrHookAlreadySet
	}
	resultProcessing.set = true
	resultProcessing.hook = hook
	return nil
}

// HandlerResultProcessing 返回进程级返回值钩子，未设置时返回空操作
func HandlerResultProcessing() pkgif.ResultHook {
	resultProcessing.mu.Lock()
	defer resultProcessing.mu.Unlock()

	if resultProcessing.hook == nil {
		return func(_, _ interface{}) {}
	}
	return resultProcessing.hook
}
