package aggregator

import (
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

// matchKey 类型匹配缓存键
type matchKey struct {
	entryType   reflect.Type
	messageType reflect.Type
}

// typeMatcher 协变类型匹配
//
// 注册类型与消息类型相同，或注册类型是消息类型实现的接口时匹配。
// 接口判断结果缓存在 LRU 中。
type typeMatcher struct {
	cache *lru.Cache[matchKey, bool]
}

func newTypeMatcher(size int) (*typeMatcher, error) {
	cache, err := lru.New[matchKey, bool](size)
	if err != nil {
		return nil, err
	}
	return &typeMatcher{cache: cache}, nil
}

// matches 判断注册为 entryType 的处理器能否处理 messageType 的消息
func (m *typeMatcher) matches(entryType, messageType reflect.Type) bool {
	if entryType == messageType {
		return true
	}
	if entryType == nil || messageType == nil || entryType.Kind() != reflect.Interface {
		return false
	}

	key := matchKey{entryType: entryType, messageType: messageType}
	if ok, hit := m.cache.Get(key); hit {
		return ok
	}
	ok := messageType.Implements(entryType)
	m.cache.Add(key, ok)
	return ok
}
