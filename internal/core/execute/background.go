package execute

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
)

// Background 后台执行器
//
// 每个 action 在独立 goroutine 中执行，并发数受 limit 约束。
// 调度本身从不阻塞调用方：超出上限的 action 在各自 goroutine 中排队等待信号量。
// action 中的 panic 被记录后丢弃，不会终止进程。
type Background struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// 确保 Background 实现 Executor 接口
var _ pkgif.Executor = (*Background)(nil)

// NewBackground 创建后台执行器
//
// limit <= 0 表示不限制并发。
func NewBackground(limit int) *Background {
	b := &Background{}
	if limit > 0 {
		b.sem = semaphore.NewWeighted(int64(limit))
	}
	return b
}

// Marshal 实现 pkgif.Executor
//
// 执行器关闭后调度的 action 被丢弃。
func (b *Background) Marshal(action func()) {
	if err := b.Go(action); err != nil {
		logger.Warn("后台执行器已关闭，丢弃任务")
	}
}

// Go 在后台执行 action
func (b *Background) Go(action func()) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()

		if b.sem != nil {
			if err := b.sem.Acquire(context.Background(), 1); err != nil {
				return
			}
			defer b.sem.Release(1)
		}
		b.execute(action)
	}()
	return nil
}

func (b *Background) execute(action func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("后台任务 panic", "panic", r)
		}
	}()
	action()
}

// Close 停止接收新任务，并等待执行中的任务完成或 ctx 结束
func (b *Background) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
