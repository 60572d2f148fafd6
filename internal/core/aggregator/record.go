package aggregator

import (
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// ============================================================================
// entry - 单个消息类型的处理器
// ============================================================================

// entry 订阅记录中某一消息类型的处理器及其过滤标签
type entry struct {
	messageType reflect.Type
	handler     types.Handler

	// filter 过滤标签，仅在注册表锁内写入，投递路径无锁读取
	filter atomic.Value
}

func newEntry(h types.Handler, filter string) *entry {
	e := &entry{
		messageType: h.MessageType(),
		handler:     h,
	}
	e.filter.Store(filter)
	return e
}

// Filter 返回当前过滤标签（"" 表示无过滤）
func (e *entry) Filter() string {
	return e.filter.Load().(string)
}

func (e *entry) setFilter(filter string) {
	e.filter.Store(filter)
}

// accepts 判断发布时携带的过滤标签能否投递到该处理器
//
// 无过滤的处理器接收所有发布；带过滤的处理器只接收标签完全相同的发布。
func (e *entry) accepts(publishFilter string) bool {
	f := e.Filter()
	return f == "" || f == publishFilter
}

// ============================================================================
// record - 订阅记录
// ============================================================================

// record 一个订阅者的订阅记录
//
// entries 在构造时确定，之后只有过滤标签可变。
type record struct {
	id          uuid.UUID
	ref         types.SubjectRef
	subjectType reflect.Type
	entries     []*entry
}

// newRecord 从订阅者声明的处理器构造订阅记录
//
// 订阅者未声明任何处理器时返回 (nil, nil)。
// 同一消息类型重复声明时，后声明的覆盖先声明的。
func newRecord(subscriber pkgif.Subscriber, filter string) (*record, error) {
	handlers := subscriber.Handlers()
	if len(handlers) == 0 {
		return nil, nil
	}

	subjectType := reflect.TypeOf(subscriber)
	if subjectType.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("%w: got %v", types.ErrNonPointerSubscriber, subjectType)
	}
	if subjectType.Elem().Size() == 0 {
		return nil, fmt.Errorf("%w: %v", types.ErrZeroSizeSubscriber, subjectType)
	}

	rec := &record{
		id:          uuid.New(),
		subjectType: subjectType,
	}

	index := make(map[reflect.Type]int, len(handlers))
	for _, h := range handlers {
		if !h.Valid() {
			return nil, fmt.Errorf("%w: subscriber %v", types.ErrInvalidHandler, subjectType)
		}
		if h.SubjectType() != subjectType {
			return nil, fmt.Errorf("%w: handler for %v declared on %v, subscriber is %v",
				types.ErrSubjectMismatch, h.MessageType(), h.SubjectType(), subjectType)
		}

		e := newEntry(h, filter)
		if i, ok := index[e.messageType]; ok {
			rec.entries[i] = e
			continue
		}
		index[e.messageType] = len(rec.entries)
		rec.entries = append(rec.entries, e)
	}

	ref, err := handlers[0].Bind(subscriber)
	if err != nil {
		return nil, err
	}
	rec.ref = ref

	return rec, nil
}

// alive 订阅者是否仍可达
func (r *record) alive() bool {
	_, ok := r.ref.Value()
	return ok
}

// is 判断记录是否属于 subject（按身份比较）
func (r *record) is(subject interface{}) bool {
	return types.Matches(r.ref, subject)
}

// lookup 查找与 messageType 对应的处理器
//
// 优先返回注册类型完全相同的处理器，其次返回协变匹配的处理器。
func (r *record) lookup(m *typeMatcher, messageType reflect.Type) *entry {
	var covariant *entry
	for _, e := range r.entries {
		if e.messageType == messageType {
			return e
		}
		if covariant == nil && m.matches(e.messageType, messageType) {
			covariant = e
		}
	}
	return covariant
}

// info 返回记录快照
func (r *record) info() types.SubscriptionInfo {
	info := types.SubscriptionInfo{
		ID:          r.id.String(),
		SubjectType: r.subjectType.String(),
		Alive:       r.alive(),
		Handlers:    make([]types.HandlerInfo, 0, len(r.entries)),
	}
	for _, e := range r.entries {
		info.Handlers = append(info.Handlers, types.HandlerInfo{
			MessageType: e.messageType.String(),
			Filter:      e.Filter(),
		})
	}
	sort.Slice(info.Handlers, func(i, j int) bool {
		return info.Handlers[i].MessageType < info.Handlers[j].MessageType
	})
	return info
}
