package execute

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestBackground_Run 测试后台执行
func TestBackground_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBackground(4)

	var n atomic.Int32
	for i := 0; i < 50; i++ {
		b.Marshal(func() { n.Add(1) })
	}
	require.NoError(t, b.Close(context.Background()))
	assert.Equal(t, int32(50), n.Load())
}

// TestBackground_NonBlocking 测试调度不阻塞调用方
func TestBackground_NonBlocking(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBackground(1)
	block := make(chan struct{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			b.Marshal(func() { <-block })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Marshal blocked the caller")
	}

	close(block)
	require.NoError(t, b.Close(context.Background()))
}

// TestBackground_Limit 测试并发上限
func TestBackground_Limit(t *testing.T) {
	defer goleak.VerifyNone(t)

	const limit = 3
	b := NewBackground(limit)

	var (
		mu      sync.Mutex
		running int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		b.Marshal(func() {
			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	require.NoError(t, b.Close(context.Background()))

	assert.LessOrEqual(t, maxSeen, limit)
	assert.Positive(t, maxSeen)
}

// TestBackground_Unlimited 测试不限制并发
func TestBackground_Unlimited(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBackground(0)
	assert.Nil(t, b.sem)

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Go(func() {
			// 三个任务互相等待，只有同时运行才能完成
			wg.Done()
			wg.Wait()
		}))
	}
	require.NoError(t, b.Close(context.Background()))
}

// TestBackground_Closed 测试关闭后调度
func TestBackground_Closed(t *testing.T) {
	b := NewBackground(1)
	require.NoError(t, b.Close(context.Background()))

	assert.ErrorIs(t, b.Go(func() {}), ErrClosed)
	assert.NotPanics(t, func() { b.Marshal(func() {}) })
}

// TestBackground_CloseTimeout 测试关闭超时
func TestBackground_CloseTimeout(t *testing.T) {
	b := NewBackground(1)
	block := make(chan struct{})
	require.NoError(t, b.Go(func() { <-block }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, b.Close(ctx), context.DeadlineExceeded)
	close(block)
	b.wg.Wait()
}

// TestBackground_PanicRecovered 测试 action panic 不会终止进程
func TestBackground_PanicRecovered(t *testing.T) {
	defer goleak.VerifyNone(t)

	bg := NewBackground(1)
	require.NoError(t, bg.Go(func() { panic("boom") }))

	var ran atomic.Bool
	require.NoError(t, bg.Go(func() { ran.Store(true) }))

	require.NoError(t, bg.Close(context.Background()))
	assert.True(t, ran.Load(), "panic 释放信号量后后续任务继续执行")
}
