package eventagg

import (
	"bytes"
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/execute"
)

// ============================================================================
// 测试类型
// ============================================================================

type ping struct{ Seq int }

type pong struct{ Seq int }

// pingView 处理 ping 并返回 pong
type pingView struct {
	mu   sync.Mutex
	seen []int
}

func (v *pingView) OnPing(p ping) interface{} {
	v.mu.Lock()
	v.seen = append(v.seen, p.Seq)
	v.mu.Unlock()
	return pong{Seq: p.Seq}
}

func (v *pingView) Handlers() []Handler {
	return []Handler{OnResult((*pingView).OnPing)}
}

func (v *pingView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

func startService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc
}

// ============================================================================
// 生命周期测试
// ============================================================================

// TestService_Lifecycle 测试启动与停止
func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, err := New()
	require.NoError(t, err)

	require.NotNil(t, svc.Aggregator())
	require.NotNil(t, svc.Loop())
	require.NotNil(t, svc.Background())
	require.NotNil(t, svc.Gatherer())

	assert.ErrorIs(t, svc.Stop(ctx), ErrNotStarted)
	require.NoError(t, svc.Start(ctx))
	assert.ErrorIs(t, svc.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, svc.Stop(ctx))
	assert.NoError(t, svc.Stop(ctx))
	assert.ErrorIs(t, svc.Start(ctx), ErrServiceStopped)
}

// TestService_InvalidConfig 测试无效配置
func TestService_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Aggregator.FailurePolicy = "ignore"

	_, err := New(WithConfig(cfg))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithPreset("unknown"))
	assert.Error(t, err)

	_, err = New(WithRegisterer(nil))
	assert.Error(t, err)
}

// TestService_ConfigCopied 测试配置被复制
func TestService_ConfigCopied(t *testing.T) {
	cfg := config.NewConfig()
	svc, err := New(WithConfig(cfg), WithPreset("strict"))
	require.NoError(t, err)

	assert.Equal(t, config.FailureIsolate, cfg.Aggregator.FailurePolicy, "调用方配置未被修改")
	assert.Equal(t, config.FailurePropagate, svc.Config().Aggregator.FailurePolicy)
}

// TestService_MetricsDisabled 测试关闭指标
func TestService_MetricsDisabled(t *testing.T) {
	svc, err := New(WithPreset("minimal"))
	require.NoError(t, err)
	assert.Nil(t, svc.Gatherer())
}

// TestService_LogOutput 测试日志输出配置
func TestService_LogOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewConfig()
	cfg.Log.Level = "bogus"

	_, err := New(WithConfig(cfg), WithLogOutput(&buf))
	assert.Error(t, err)
}

// ============================================================================
// 发布测试
// ============================================================================

// TestService_PublishWithHooks 测试钩子与指标
func TestService_PublishWithHooks(t *testing.T) {
	reg := prometheus.NewRegistry()

	var (
		mu      sync.Mutex
		results []interface{}
	)
	svc := startService(t,
		WithRegisterer(reg),
		WithClock(clock.NewMock()),
		WithResultHook(func(_, result interface{}) {
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}),
	)
	assert.Equal(t, prometheus.Gatherer(reg), svc.Gatherer())

	v := &pingView{}
	require.NoError(t, svc.Aggregator().Subscribe(v))
	require.NoError(t, PublishOnCurrentThread(svc.Aggregator(), ping{Seq: 1}))

	mu.Lock()
	assert.Equal(t, []interface{}{pong{Seq: 1}}, results)
	mu.Unlock()

	n, err := testutil.GatherAndCount(reg, "eventagg_publish_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

// TestService_FailureHook 测试失败钩子
func TestService_FailureHook(t *testing.T) {
	var got []*HandlerError
	svc := startService(t, WithFailureHook(func(err *HandlerError) {
		got = append(got, err)
	}))

	v := &brokenView{}
	require.NoError(t, svc.Aggregator().Subscribe(v))
	require.NoError(t, PublishOnCurrentThread(svc.Aggregator(), ping{}))

	require.Len(t, got, 1)
	assert.True(t, got[0].Panicked)
}

// brokenView 处理 ping 时 panic
type brokenView struct{ name string }

func (v *brokenView) OnPing(ping) { panic("broken") }

func (v *brokenView) Handlers() []Handler {
	return []Handler{On((*brokenView).OnPing)}
}

// TestService_FxOptions 测试自定义 Fx 选项
func TestService_FxOptions(t *testing.T) {
	var loop *execute.Loop
	svc := startService(t, WithFxOptions(fx.Populate(&loop)))
	assert.Same(t, loop, svc.Loop())
}

// TestService_PruneInspect 测试清理与诊断
func TestService_PruneInspect(t *testing.T) {
	svc := startService(t)
	v := &pingView{}
	require.NoError(t, svc.Aggregator().Subscribe(v, SubscribeFilter("a")))

	infos := svc.Inspect()
	require.Len(t, infos, 1)
	assert.Equal(t, "a", infos[0].Handlers[0].Filter)
	assert.Equal(t, 0, svc.Prune())
	runtime.KeepAlive(v)
}
