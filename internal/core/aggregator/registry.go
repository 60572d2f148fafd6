package aggregator

import (
	"reflect"
	"sort"
	"sync"

	"github.com/dep2p/go-eventagg/pkg/types"
)

// pairKey (消息类型, 过滤标签) 组合
type pairKey struct {
	messageType reflect.Type
	filter      string
}

// registry 订阅记录表
//
// 所有结构性修改都在 mu 内完成，且只覆盖单次操作本身。
// 修改操作返回需要发布的拓扑通知，由调用方在释放锁之后发布。
//
// add / remove / setFilter 先在同一锁内移除已失效的记录，
// pairs 因此在每次产生通知时只反映存活记录。
type registry struct {
	mu      sync.Mutex
	matcher *typeMatcher

	// onSweep 修改操作顺带移除失效记录时调用（持有锁，不得回调注册表）
	onSweep func(n int)

	// records 按订阅顺序排列
	records []*record

	// pairs 每个 (类型, 过滤标签) 组合被多少条记录持有
	pairs map[pairKey]int
}

func newRegistry(matcher *typeMatcher) *registry {
	return &registry{
		matcher: matcher,
		pairs:   make(map[pairKey]int),
	}
}

// ============================================================================
// 结构性修改
// ============================================================================

// add 添加订阅记录
//
// 同一订阅者已存在时返回 false。
func (r *registry) add(rec *record, subject interface{}) (bool, []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.sweep()
	if r.indexOf(subject) >= 0 {
		return false, events
	}
	r.records = append(r.records, rec)
	return true, append(events, r.retain(rec)...)
}

// remove 移除订阅者的记录，不存在时为空操作
func (r *registry) remove(subject interface{}) (*record, []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.sweep()
	i := r.indexOf(subject)
	if i < 0 {
		return nil, events
	}
	rec := r.records[i]
	r.records = append(r.records[:i:i], r.records[i+1:]...)
	return rec, append(events, r.release(rec)...)
}

// setFilter 修改订阅者某消息类型的过滤标签
//
// 标签发生变化时依次返回旧组合的 MessageRemoved 与新组合的 MessageAdded。
func (r *registry) setFilter(subject interface{}, messageType reflect.Type, filter string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.sweep()
	i := r.indexOf(subject)
	if i < 0 {
		return events
	}
	e := r.records[i].lookup(r.matcher, messageType)
	if e == nil {
		return events
	}

	old := e.Filter()
	if old == filter {
		return events
	}
	e.setFilter(filter)

	r.decrement(pairKey{messageType: e.messageType, filter: old})
	r.increment(pairKey{messageType: e.messageType, filter: filter})

	return append(events,
		types.MessageRemoved{Type: e.messageType, Filter: old},
		types.MessageAdded{Type: e.messageType, Filter: filter},
	)
}

// reap 移除给定的失效记录（仍在表中时）
func (r *registry) reap(dead []*record) (int, []interface{}) {
	if len(dead) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	gone := make(map[*record]struct{}, len(dead))
	for _, rec := range dead {
		gone[rec] = struct{}{}
	}
	return r.removeWhere(func(rec *record) bool {
		_, ok := gone[rec]
		return ok
	})
}

// prune 移除所有订阅者已不可达的记录
func (r *registry) prune() (int, []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeWhere(func(rec *record) bool {
		return !rec.alive()
	})
}

// sweep 移除失效记录（调用方持有锁）
func (r *registry) sweep() []interface{} {
	n, events := r.removeWhere(func(rec *record) bool {
		return !rec.alive()
	})
	if n > 0 && r.onSweep != nil {
		r.onSweep(n)
	}
	return events
}

// removeWhere 移除满足条件的记录（调用方持有锁）
func (r *registry) removeWhere(match func(*record) bool) (int, []interface{}) {
	var (
		events  []interface{}
		removed int
	)
	kept := r.records[:0]
	for _, rec := range r.records {
		if match(rec) {
			removed++
			events = append(events, r.release(rec)...)
			continue
		}
		kept = append(kept, rec)
	}
	// 清除尾部引用
	for i := len(kept); i < len(r.records); i++ {
		r.records[i] = nil
	}
	r.records = kept
	return removed, events
}

// ============================================================================
// 查询
// ============================================================================

// snapshot 返回记录序列的副本
func (r *registry) snapshot() []*record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*record, len(r.records))
	copy(out, r.records)
	return out
}

// size 返回记录数（包括尚未回收的失效记录）
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// countFor 统计存活记录中协变匹配 messageType 且过滤标签完全相同的数量
func (r *registry) countFor(messageType reflect.Type, filter string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if !rec.alive() {
			continue
		}
		for _, e := range rec.entries {
			if e.Filter() == filter && r.matcher.matches(e.messageType, messageType) {
				count++
				break
			}
		}
	}
	return count
}

// activeFilters 返回匹配 messageType 的所有非空过滤标签（已排序、去重）
func (r *registry) activeFilters(messageType reflect.Type) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	for _, rec := range r.records {
		if !rec.alive() {
			continue
		}
		for _, e := range rec.entries {
			f := e.Filter()
			if f == "" || !r.matcher.matches(e.messageType, messageType) {
				continue
			}
			seen[f] = struct{}{}
		}
	}

	filters := make([]string, 0, len(seen))
	for f := range seen {
		filters = append(filters, f)
	}
	sort.Strings(filters)
	return filters
}

// inspect 返回所有记录的快照
func (r *registry) inspect() []types.SubscriptionInfo {
	snap := r.snapshot()
	infos := make([]types.SubscriptionInfo, 0, len(snap))
	for _, rec := range snap {
		infos = append(infos, rec.info())
	}
	return infos
}

// ============================================================================
// 内部方法（调用方持有锁）
// ============================================================================

func (r *registry) indexOf(subject interface{}) int {
	for i, rec := range r.records {
		if rec.is(subject) {
			return i
		}
	}
	return -1
}

// retain 记录加入后更新组合计数，返回新出现组合的 MessageAdded
func (r *registry) retain(rec *record) []interface{} {
	var events []interface{}
	for _, e := range rec.entries {
		key := pairKey{messageType: e.messageType, filter: e.Filter()}
		if r.increment(key) {
			events = append(events, types.MessageAdded{Type: key.messageType, Filter: key.filter})
		}
	}
	return events
}

// release 记录移除后更新组合计数，返回消失组合的 MessageRemoved
func (r *registry) release(rec *record) []interface{} {
	var events []interface{}
	for _, e := range rec.entries {
		key := pairKey{messageType: e.messageType, filter: e.Filter()}
		if r.decrement(key) {
			events = append(events, types.MessageRemoved{Type: key.messageType, Filter: key.filter})
		}
	}
	return events
}

// increment 计数加一，0 -> 1 时返回 true
func (r *registry) increment(key pairKey) bool {
	r.pairs[key]++
	return r.pairs[key] == 1
}

// decrement 计数减一，1 -> 0 时返回 true
func (r *registry) decrement(key pairKey) bool {
	n, ok := r.pairs[key]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.pairs, key)
		return true
	}
	r.pairs[key] = n - 1
	return false
}
