package execute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
)

// TestLoop_ImplementsInterface 验证 Loop 实现接口
func TestLoop_ImplementsInterface(t *testing.T) {
	var _ pkgif.LoopExecutor = (*Loop)(nil)
}

// TestLoop_Order 测试按投递顺序串行执行
func TestLoop_Order(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(8)
	loop.Start()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(t, loop.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, loop.Close(context.Background()))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

// TestLoop_Send 测试同步投递
func TestLoop_Send(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(1)
	loop.Start()
	defer loop.Close(context.Background())

	ran := false
	require.NoError(t, loop.Send(func() { ran = true }))
	assert.True(t, ran, "Send 返回时 action 已执行")
}

// TestLoop_SingleGoroutine 测试所有 action 在同一 goroutine 上执行
func TestLoop_SingleGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(16)
	loop.Start()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
	)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Marshal(func() {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	require.NoError(t, loop.Close(context.Background()))

	assert.Equal(t, 1, maxSeen)
}

// TestLoop_PanicDoesNotStop 测试 action panic 不会终止循环
func TestLoop_PanicDoesNotStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(4)
	loop.Start()
	defer loop.Close(context.Background())

	require.NoError(t, loop.Send(func() { panic("boom") }))

	ran := false
	require.NoError(t, loop.Send(func() { ran = true }))
	assert.True(t, ran)
}

// TestLoop_NotStarted 测试未启动时投递
func TestLoop_NotStarted(t *testing.T) {
	loop := NewLoop(1)

	assert.ErrorIs(t, loop.Post(func() {}), ErrNotStarted)
	assert.NotPanics(t, func() { loop.Marshal(func() {}) })
	assert.NoError(t, loop.Close(context.Background()))
}

// TestLoop_Closed 测试关闭后投递
func TestLoop_Closed(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(1)
	loop.Start()
	require.NoError(t, loop.Close(context.Background()))

	assert.ErrorIs(t, loop.Post(func() {}), ErrClosed)
	assert.ErrorIs(t, loop.Send(func() {}), ErrClosed)
	assert.NotPanics(t, func() { loop.Marshal(func() {}) })

	// 重复关闭
	assert.NoError(t, loop.Close(context.Background()))
}

// TestLoop_CloseDrains 测试关闭时执行完队列中剩余任务
func TestLoop_CloseDrains(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(16)
	loop.Start()

	block := make(chan struct{})
	require.NoError(t, loop.Post(func() { <-block }))

	count := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, loop.Post(func() { count++ }))
	}
	close(block)

	require.NoError(t, loop.Close(context.Background()))
	assert.Equal(t, 10, count)
}

// TestLoop_CloseTimeout 测试关闭超时
func TestLoop_CloseTimeout(t *testing.T) {
	loop := NewLoop(1)
	loop.Start()

	block := make(chan struct{})
	require.NoError(t, loop.Post(func() { <-block }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, loop.Close(ctx), context.DeadlineExceeded)
	close(block)
	<-loop.done
}

// TestLoop_NestedPost 测试在循环内继续投递
func TestLoop_NestedPost(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(4)
	loop.Start()

	done := make(chan struct{})
	require.NoError(t, loop.Post(func() {
		_ = loop.Post(func() { close(done) })
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested action not executed")
	}
	require.NoError(t, loop.Close(context.Background()))
}

// TestLoop_NestedPostBeyondCapacity 测试循环内连续投递超过初始容量
func TestLoop_NestedPostBeyondCapacity(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(1)
	loop.Start()

	var got []int
	done := make(chan struct{})
	require.NoError(t, loop.Post(func() {
		got = append(got, 0)
		assert.NoError(t, loop.Post(func() { got = append(got, 1) }))
		assert.NoError(t, loop.Post(func() {
			got = append(got, 2)
			loop.Marshal(func() {
				got = append(got, 3)
				close(done)
			})
		}))
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop blocked on its own queue")
	}
	require.NoError(t, loop.Close(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

// TestLoop_PostDoesNotBlock 测试循环忙碌时投递不阻塞
func TestLoop_PostDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewLoop(1)
	loop.Start()

	block := make(chan struct{})
	require.NoError(t, loop.Post(func() { <-block }))

	posted := make(chan struct{})
	count := 0
	go func() {
		defer close(posted)
		for i := 0; i < 100; i++ {
			_ = loop.Post(func() { count++ })
		}
	}()

	select {
	case <-posted:
	case <-time.After(time.Second):
		t.Fatal("Post blocked while the loop was busy")
	}
	close(block)

	require.NoError(t, loop.Close(context.Background()))
	assert.Equal(t, 100, count)
}
