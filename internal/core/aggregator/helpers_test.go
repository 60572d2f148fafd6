package aggregator

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventagg/internal/core/execute"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// ============================================================================
// 测试消息
// ============================================================================

type refresh struct{ N int }

type query struct{ Q string }

type animal interface{ Sound() string }

type dog struct{ Name string }

func (d dog) Sound() string { return d.Name + ": woof" }

var errBoom = errors.New("boom")

// ============================================================================
// 测试订阅者
// ============================================================================

// refreshView 处理 refresh
type refreshView struct {
	mu  sync.Mutex
	got []refresh
}

func (v *refreshView) HandleRefresh(m refresh) {
	v.mu.Lock()
	v.got = append(v.got, m)
	v.mu.Unlock()
}

func (v *refreshView) Handlers() []types.Handler {
	return []types.Handler{types.On((*refreshView).HandleRefresh)}
}

func (v *refreshView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.got)
}

// multiView 处理 refresh 与 query
type multiView struct {
	mu      sync.Mutex
	refresh int
	query   int
}

func (v *multiView) HandleRefresh(refresh) {
	v.mu.Lock()
	v.refresh++
	v.mu.Unlock()
}

func (v *multiView) HandleQuery(query) {
	v.mu.Lock()
	v.query++
	v.mu.Unlock()
}

func (v *multiView) Handlers() []types.Handler {
	return []types.Handler{
		types.On((*multiView).HandleRefresh),
		types.On((*multiView).HandleQuery),
	}
}

// animalView 处理 animal 接口
type animalView struct {
	sounds []string
}

func (v *animalView) HandleAnimal(a animal) {
	v.sounds = append(v.sounds, a.Sound())
}

func (v *animalView) Handlers() []types.Handler {
	return []types.Handler{types.On((*animalView).HandleAnimal)}
}

// answerView 返回处理结果
type answerView struct {
	prefix string
}

func (v *answerView) Answer(q query) interface{} {
	if q.Q == "" {
		return nil
	}
	return v.prefix + q.Q
}

func (v *answerView) Handlers() []types.Handler {
	return []types.Handler{types.OnResult((*answerView).Answer)}
}

// faultyView 处理 refresh 时 panic 或返回错误
type faultyView struct {
	panics bool
	calls  int
}

func (v *faultyView) HandleRefresh(refresh) error {
	v.calls++
	if v.panics {
		panic("faulty view")
	}
	return errBoom
}

func (v *faultyView) Handlers() []types.Handler {
	return []types.Handler{types.OnError((*faultyView).HandleRefresh)}
}

// emptyView 未声明处理器
type emptyView struct{ name string }

func (v *emptyView) Handlers() []types.Handler { return nil }

// wrongView 声明了其他类型的处理器
type wrongView struct{ name string }

func (v *wrongView) Handlers() []types.Handler {
	return []types.Handler{types.On((*refreshView).HandleRefresh)}
}

// zeroView 声明了未初始化的处理器
type zeroView struct{ name string }

func (v *zeroView) Handlers() []types.Handler {
	return []types.Handler{{}}
}

// statelessView 零大小订阅者
type statelessView struct{}

func (v *statelessView) HandleRefresh(refresh) {}

func (v *statelessView) Handlers() []types.Handler {
	return []types.Handler{types.On((*statelessView).HandleRefresh)}
}

// valueView 以值类型订阅
type valueView struct{ name string }

func (v valueView) Handlers() []types.Handler {
	return []types.Handler{types.On((*refreshView).HandleRefresh)}
}

// monitor 订阅拓扑通知
type monitor struct {
	mu      sync.Mutex
	added   []types.MessageAdded
	removed []types.MessageRemoved
}

func (m *monitor) OnAdded(ev types.MessageAdded) {
	m.mu.Lock()
	m.added = append(m.added, ev)
	m.mu.Unlock()
}

func (m *monitor) OnRemoved(ev types.MessageRemoved) {
	m.mu.Lock()
	m.removed = append(m.removed, ev)
	m.mu.Unlock()
}

func (m *monitor) Handlers() []types.Handler {
	return []types.Handler{
		types.On((*monitor).OnAdded),
		types.On((*monitor).OnRemoved),
	}
}

// addedFor 返回某类型的 MessageAdded
func (m *monitor) addedFor(t reflect.Type) []types.MessageAdded {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.MessageAdded
	for _, ev := range m.added {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// removedFor 返回某类型的 MessageRemoved
func (m *monitor) removedFor(t reflect.Type) []types.MessageRemoved {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.MessageRemoved
	for _, ev := range m.removed {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// ============================================================================
// 辅助函数
// ============================================================================

func newTestAggregator(t *testing.T, opts ...Option) *Aggregator {
	t.Helper()
	agg, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return agg
}

// subscribeTemporary 订阅一个调用返回后即不可达的订阅者
//
//go:noinline
func subscribeTemporary(t *testing.T, agg *Aggregator, filter string) {
	v := &refreshView{got: make([]refresh, 0, 4)}
	require.NoError(t, agg.Subscribe(v, pkgif.SubscribeFilter(filter)))
}

// collect 触发两次 GC，确保弱引用被清除
func collect() {
	runtime.GC()
	runtime.GC()
}

func publishNow(t *testing.T, agg *Aggregator, msg interface{}) {
	t.Helper()
	require.NoError(t, agg.Publish(msg, execute.Immediate))
}
