package config

import (
	"fmt"
	"time"
)

// FailurePolicy 处理器失败策略
type FailurePolicy string

const (
	// FailureIsolate 逐个处理器捕获失败并上报，继续投递其余订阅者（默认）
	FailureIsolate FailurePolicy = "isolate"

	// FailurePropagate 第一个失败以 panic 传播出投递回调，中止本次遍历
	FailurePropagate FailurePolicy = "propagate"
)

// AggregatorConfig 聚合器配置
type AggregatorConfig struct {
	// FailurePolicy 处理器失败策略
	FailurePolicy FailurePolicy `json:"failure_policy" yaml:"failure_policy"`

	// MatchCacheSize 类型匹配结果缓存容量（LRU）
	MatchCacheSize int `json:"match_cache_size" yaml:"match_cache_size"`

	// FailureLogInterval 失败日志的最小间隔
	//
	// 同一聚合器内，失败日志按该间隔限流，突发上限为 FailureLogBurst。
	FailureLogInterval Duration `json:"failure_log_interval" yaml:"failure_log_interval"`

	// FailureLogBurst 失败日志突发上限
	FailureLogBurst int `json:"failure_log_burst" yaml:"failure_log_burst"`
}

// DefaultAggregatorConfig 返回默认聚合器配置
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		FailurePolicy:      FailureIsolate,
		MatchCacheSize:     1024,
		FailureLogInterval: Duration(time.Second),
		FailureLogBurst:    10,
	}
}

// Validate 验证聚合器配置
func (c AggregatorConfig) Validate() error {
	switch c.FailurePolicy {
	case FailureIsolate, FailurePropagate:
	default:
		return fmt.Errorf("aggregator: unknown failure policy %q", c.FailurePolicy)
	}
	if c.MatchCacheSize <= 0 {
		return fmt.Errorf("aggregator: match cache size must be positive, got %d", c.MatchCacheSize)
	}
	if c.FailureLogInterval < 0 {
		return fmt.Errorf("aggregator: failure log interval must not be negative")
	}
	if c.FailureLogBurst <= 0 {
		return fmt.Errorf("aggregator: failure log burst must be positive, got %d", c.FailureLogBurst)
	}
	return nil
}
