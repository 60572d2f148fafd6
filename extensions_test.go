package eventagg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventagg/internal/core/execute"
)

// TestPublishOnLoop 测试在事件循环上等待投递
func TestPublishOnLoop(t *testing.T) {
	svc := startService(t)
	v := &pingView{}
	require.NoError(t, svc.Aggregator().Subscribe(v))

	require.NoError(t, PublishOnLoop(svc.Aggregator(), svc.Loop(), ping{Seq: 1}))
	assert.Equal(t, 1, v.count(), "返回时已投递")
}

// TestBeginPublishOnLoop 测试异步投递到事件循环
func TestBeginPublishOnLoop(t *testing.T) {
	svc := startService(t)
	v := &pingView{}
	require.NoError(t, svc.Aggregator().Subscribe(v))

	for i := 0; i < 10; i++ {
		require.NoError(t, BeginPublishOnLoop(svc.Aggregator(), svc.Loop(), ping{Seq: i}))
	}
	// Send 在所有先前任务之后执行
	require.NoError(t, svc.Loop().Send(func() {}))
	assert.Equal(t, 10, v.count())

	v.mu.Lock()
	defer v.mu.Unlock()
	for i, seq := range v.seen {
		assert.Equal(t, i, seq, "事件循环保持投递顺序")
	}
}

// TestPublishOnLoopAsync 测试返回完成通道
func TestPublishOnLoopAsync(t *testing.T) {
	svc := startService(t)
	v := &pingView{}
	require.NoError(t, svc.Aggregator().Subscribe(v))

	done, err := PublishOnLoopAsync(svc.Aggregator(), svc.Loop(), ping{Seq: 3})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish not completed")
	}
	assert.Equal(t, 1, v.count())
}

// TestPublishOnLoop_Closed 测试事件循环关闭后投递
func TestPublishOnLoop_Closed(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Stop(context.Background()))

	agg, loop := svc.Aggregator(), svc.Loop()
	assert.ErrorIs(t, PublishOnLoop(agg, loop, ping{}), execute.ErrClosed)
	assert.ErrorIs(t, BeginPublishOnLoop(agg, loop, ping{}), execute.ErrClosed)
	_, err = PublishOnLoopAsync(agg, loop, ping{})
	assert.ErrorIs(t, err, execute.ErrClosed)
}

// TestPublishOnBackgroundThread 测试后台投递
func TestPublishOnBackgroundThread(t *testing.T) {
	agg := mustAggregator(t)
	bg := execute.NewBackground(2)
	v := &pingView{}
	require.NoError(t, agg.Subscribe(v))

	for i := 0; i < 5; i++ {
		require.NoError(t, PublishOnBackgroundThread(agg, bg, ping{Seq: i}))
	}
	require.NoError(t, bg.Close(context.Background()))
	assert.Equal(t, 5, v.count())
}

// TestExtensions_InvalidArguments 测试参数错误
func TestExtensions_InvalidArguments(t *testing.T) {
	agg := mustAggregator(t)

	assert.ErrorIs(t, PublishOnCurrentThread(agg, nil), ErrNilMessage)
	assert.ErrorIs(t, PublishOnBackgroundThread(agg, nil, ping{}), ErrInvalidArgument)
	assert.ErrorIs(t, PublishOnLoop(agg, nil, ping{}), ErrNilMarshal)
	assert.ErrorIs(t, BeginPublishOnLoop(agg, nil, ping{}), ErrNilMarshal)
	_, err := PublishOnLoopAsync(agg, nil, ping{})
	assert.ErrorIs(t, err, ErrNilMarshal)
}

// TestGenericHelpers 测试按类型查询
func TestGenericHelpers(t *testing.T) {
	agg := mustAggregator(t)
	v1, v2 := &pingView{}, &pingView{}
	require.NoError(t, agg.Subscribe(v1))
	require.NoError(t, agg.Subscribe(v2))

	require.NoError(t, SetFilterFor[ping](agg, v1, "A"))
	require.NoError(t, SetFilterFor[ping](agg, v2, "B"))

	assert.Equal(t, 1, HandlerCount[ping](agg, "A"))
	assert.True(t, HandlerExists[ping](agg, "B"))
	assert.False(t, HandlerExists[ping](agg, "C"))
	assert.False(t, HandlerExists[pong](agg, ""))
	assert.Equal(t, []string{"A", "B"}, ActiveFilters[ping](agg))

	require.NoError(t, PublishOnCurrentThread(agg, ping{}, PublishFilter("A")))
	assert.Equal(t, 1, v1.count())
	assert.Equal(t, 0, v2.count())
}

// topologyView 订阅拓扑通知
type topologyView struct {
	added   map[string]int
	removed map[string]int
}

func (v *topologyView) OnAdded(m MessageAdded) {
	v.added[m.Type.String()+"/"+m.Filter]++
}

func (v *topologyView) OnRemoved(m MessageRemoved) {
	v.removed[m.Type.String()+"/"+m.Filter]++
}

func (v *topologyView) Handlers() []Handler {
	return []Handler{
		On((*topologyView).OnAdded),
		On((*topologyView).OnRemoved),
	}
}

// TestTopologyMonitor 测试通过公共 API 订阅拓扑通知
func TestTopologyMonitor(t *testing.T) {
	agg := mustAggregator(t)
	mon := &topologyView{added: map[string]int{}, removed: map[string]int{}}
	require.NoError(t, agg.Subscribe(mon))

	v := &pingView{}
	require.NoError(t, agg.Subscribe(v, SubscribeFilter("M2")))
	require.NoError(t, SetFilterFor[ping](agg, v, "M3"))
	require.NoError(t, agg.Unsubscribe(v))

	assert.Equal(t, 1, mon.added["eventagg.ping/M2"])
	assert.Equal(t, 1, mon.removed["eventagg.ping/M2"])
	assert.Equal(t, 1, mon.added["eventagg.ping/M3"])
	assert.Equal(t, 1, mon.removed["eventagg.ping/M3"])
}

func mustAggregator(t *testing.T) EventAggregator {
	t.Helper()
	svc, err := New()
	require.NoError(t, err)
	return svc.Aggregator()
}
