package aggregator

import (
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/lib/log"
	"github.com/dep2p/go-eventagg/pkg/types"
)

var logger = log.Logger("core/aggregator")

// ============================================================================
// Aggregator 实现
// ============================================================================

// Aggregator 事件聚合器
type Aggregator struct {
	registry   *registry
	dispatcher *dispatcher
}

// 确保 Aggregator 实现 EventAggregator 接口
var _ pkgif.EventAggregator = (*Aggregator)(nil)

// Option 聚合器选项
type Option func(*dispatcher)

// WithResultHook 设置处理器返回值钩子
func WithResultHook(hook pkgif.ResultHook) Option {
	return func(d *dispatcher) {
		d.resultHook = hook
	}
}

// WithFailureHook 设置处理器失败钩子（替换默认的日志记录）
func WithFailureHook(hook pkgif.FailureHook) Option {
	return func(d *dispatcher) {
		if hook != nil {
			d.failureHook = hook
		}
	}
}

// WithReporter 设置指标上报
func WithReporter(r metrics.Reporter) Option {
	return func(d *dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithClock 设置计时时钟
func WithClock(c clock.Clock) Option {
	return func(d *dispatcher) {
		if c != nil {
			d.clock = c
		}
	}
}

// New 创建事件聚合器
func New(cfg Config, opts ...Option) (*Aggregator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	matcher, err := newTypeMatcher(cfg.MatchCacheSize)
	if err != nil {
		return nil, err
	}
	reg := newRegistry(matcher)

	limit := rate.Inf
	if cfg.FailureLogInterval > 0 {
		limit = rate.Every(cfg.FailureLogInterval)
	}

	d := &dispatcher{
		registry:   reg,
		matcher:    matcher,
		policy:     cfg.FailurePolicy,
		reporter:   metrics.NopReporter{},
		clock:      clock.New(),
		failureLog: rate.NewLimiter(limit, cfg.FailureLogBurst),
	}
	d.failureHook = d.logFailure
	for _, opt := range opts {
		opt(d)
	}
	reg.onSweep = func(n int) {
		d.reporter.LogReaped(n)
		logger.Debug("回收失效订阅", "count", n)
	}

	return &Aggregator{
		registry:   reg,
		dispatcher: d,
	}, nil
}

// ============================================================================
// EventAggregator 接口实现
// ============================================================================

// Subscribe 注册订阅者声明的所有处理器
//
// 同一实例重复订阅为空操作；未声明任何处理器的订阅者同样为空操作。
func (a *Aggregator) Subscribe(subscriber pkgif.Subscriber, opts ...pkgif.SubscribeOpt) error {
	if isNil(subscriber) {
		return types.ErrNilSubscriber
	}

	settings := &pkgif.SubscribeSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	rec, err := newRecord(subscriber, settings.Filter)
	if err != nil {
		return err
	}
	if rec == nil {
		logger.Debug("订阅者未声明处理器，忽略", "subject", reflect.TypeOf(subscriber))
		return nil
	}

	added, events := a.registry.add(rec, subscriber)
	defer a.dispatcher.commit(events)
	if !added {
		return nil
	}
	logger.Debug("订阅",
		"record", rec.id,
		"subject", rec.subjectType,
		"handlers", len(rec.entries),
		"filter", settings.Filter)
	return nil
}

// Unsubscribe 移除订阅者的全部订阅，未订阅时为空操作
func (a *Aggregator) Unsubscribe(subscriber pkgif.Subscriber) error {
	if isNil(subscriber) {
		return types.ErrNilSubscriber
	}

	rec, events := a.registry.remove(subscriber)
	defer a.dispatcher.commit(events)
	if rec == nil {
		return nil
	}
	logger.Debug("取消订阅", "record", rec.id, "subject", rec.subjectType)
	return nil
}

// Publish 发布消息
func (a *Aggregator) Publish(message interface{}, marshal pkgif.Marshal, opts ...pkgif.PublishOpt) error {
	settings := &pkgif.PublishSettings{}
	for _, opt := range opts {
		opt(settings)
	}
	return a.dispatcher.publish(message, marshal, settings.Filter)
}

// SetFilter 设置订阅者某消息类型的过滤标签
//
// 订阅者未订阅或未处理该类型时为空操作。
func (a *Aggregator) SetFilter(subscriber pkgif.Subscriber, messageType reflect.Type, filter string) error {
	if isNil(subscriber) {
		return types.ErrNilSubscriber
	}
	if messageType == nil {
		return types.ErrNilMessageType
	}

	events := a.registry.setFilter(subscriber, messageType, filter)
	a.dispatcher.commit(events)
	return nil
}

// HandlerExistsFor 是否存在该 (类型, 过滤标签) 的存活处理器
func (a *Aggregator) HandlerExistsFor(messageType reflect.Type, filter string) bool {
	return a.HandlerCountFor(messageType, filter) > 0
}

// HandlerCountFor 该 (类型, 过滤标签) 的存活处理器数量
//
// 类型按协变匹配，过滤标签按完全相等匹配（"" 只匹配无过滤）。
func (a *Aggregator) HandlerCountFor(messageType reflect.Type, filter string) int {
	if messageType == nil {
		return 0
	}
	return a.registry.countFor(messageType, filter)
}

// ActiveFiltersForType 返回该类型当前所有非空过滤标签（已排序）
func (a *Aggregator) ActiveFiltersForType(messageType reflect.Type) []string {
	if messageType == nil {
		return []string{}
	}
	return a.registry.activeFilters(messageType)
}

// ============================================================================
// 诊断与清理
// ============================================================================

// Prune 立即移除所有订阅者已不可达的记录，返回移除数量
//
// 正常情况下失效记录在下一次发布时回收，Prune 提供确定性的清理时机。
func (a *Aggregator) Prune() int {
	n, events := a.registry.prune()
	if n > 0 {
		a.dispatcher.reporter.LogReaped(n)
		logger.Debug("清理失效订阅", "count", n)
	}
	a.dispatcher.commit(events)
	return n
}

// Inspect 返回所有订阅记录的快照
func (a *Aggregator) Inspect() []types.SubscriptionInfo {
	return a.registry.inspect()
}

// Len 返回订阅记录数（包括尚未回收的失效记录）
func (a *Aggregator) Len() int {
	return a.registry.size()
}

// isNil 判断订阅者是否为 nil（包括带类型的 nil 指针）
func isNil(subscriber pkgif.Subscriber) bool {
	if subscriber == nil {
		return true
	}
	v := reflect.ValueOf(subscriber)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// ============================================================================
// 配置
// ============================================================================

// Config 聚合器配置
type Config struct {
	// FailurePolicy 处理器失败策略
	FailurePolicy config.FailurePolicy

	// MatchCacheSize 类型匹配缓存容量
	MatchCacheSize int

	// FailureLogInterval 默认失败日志的最小间隔（0 表示不限流）
	FailureLogInterval time.Duration

	// FailureLogBurst 默认失败日志突发上限
	FailureLogBurst int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建聚合器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := config.DefaultAggregatorConfig()
	if cfg != nil {
		c = cfg.Aggregator
	}
	return Config{
		FailurePolicy:      c.FailurePolicy,
		MatchCacheSize:     c.MatchCacheSize,
		FailureLogInterval: c.FailureLogInterval.Duration(),
		FailureLogBurst:    c.FailureLogBurst,
	}
}

func (c Config) validate() error {
	return config.AggregatorConfig{
		FailurePolicy:      c.FailurePolicy,
		MatchCacheSize:     c.MatchCacheSize,
		FailureLogInterval: config.Duration(c.FailureLogInterval),
		FailureLogBurst:    c.FailureLogBurst,
	}.Validate()
}
