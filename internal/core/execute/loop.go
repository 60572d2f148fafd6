package execute

import (
	"context"
	"errors"
	"sync"

	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/lib/log"
)

var logger = log.Logger("core/execute")

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrClosed 执行器已关闭
	ErrClosed = errors.New("executor closed")

	// ErrNotStarted 事件循环未启动
	ErrNotStarted = errors.New("loop not started")
)

// ============================================================================
//                              Loop 实现
// ============================================================================

// Loop 单 goroutine 事件循环
//
// 所有 action 按投递顺序在同一个 goroutine 上串行执行，
// 相当于 UI 线程：需要线程亲和性的订阅者通过它接收消息。
//
// 队列不设上限，Post 从不阻塞，循环内的 action 可以继续 Post。
// Send 会等待 action 执行完成，不可在循环自身的 goroutine 中调用，否则死锁。
type Loop struct {
	mu      sync.Mutex
	pending []func()
	started bool
	closed  bool

	// wake 容量为 1，有新任务或关闭时投递信号
	wake chan struct{}

	startOnce sync.Once
	done      chan struct{}
}

// 确保 Loop 实现 LoopExecutor 接口
var _ pkgif.LoopExecutor = (*Loop)(nil)

// NewLoop 创建事件循环
//
// queueSize 为待执行队列的初始容量。
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Loop{
		pending: make([]func(), 0, queueSize),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start 启动事件循环 goroutine（幂等）
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		l.mu.Lock()
		l.started = true
		l.mu.Unlock()

		go l.run()
	})
}

func (l *Loop) run() {
	defer close(l.done)

	batch := make([]func(), 0, cap(l.pending))
	for {
		l.mu.Lock()
		for len(l.pending) == 0 && !l.closed {
			l.mu.Unlock()
			<-l.wake
			l.mu.Lock()
		}
		if len(l.pending) == 0 {
			// 已关闭且队列为空
			l.mu.Unlock()
			return
		}
		batch, l.pending = l.pending, batch[:0]
		l.mu.Unlock()

		for i, action := range batch {
			l.execute(action)
			batch[i] = nil
		}
	}
}

// execute 执行单个 action，panic 不会终止事件循环
func (l *Loop) execute(action func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("事件循环任务 panic", "panic", r)
		}
	}()
	action()
}

// signal 唤醒事件循环，信号已在等待时直接返回
func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Post 异步投递 action
func (l *Loop) Post(action func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if !l.started {
		l.mu.Unlock()
		return ErrNotStarted
	}
	l.pending = append(l.pending, action)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Send 投递 action 并等待其执行完成
//
// action 中的 panic 会被事件循环记录，Send 仍然返回 nil。
func (l *Loop) Send(action func()) error {
	finished := make(chan struct{})
	err := l.Post(func() {
		defer close(finished)
		action()
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// 循环在 action 执行前退出时不会关闭 finished
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Marshal 实现 pkgif.Executor（等价于 Post）
func (l *Loop) Marshal(action func()) {
	if err := l.Post(action); err != nil {
		logger.Warn("事件循环不可用，丢弃任务", "error", err)
	}
}

// Close 停止接收新任务，执行完队列中剩余任务后退出
//
// ctx 结束时立即返回 ctx.Err()，循环仍会在后台排空队列。
func (l *Loop) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	started := l.started
	l.mu.Unlock()

	if !started {
		return nil
	}
	l.signal()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
