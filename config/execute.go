package config

import (
	"fmt"
	"time"
)

// ExecuteConfig 执行器配置
//
// 配置内置的线程封送执行器：
//   - Background: 后台 goroutine 执行，受并发上限约束
//   - Loop: 单 goroutine 事件循环，类似 UI 线程
type ExecuteConfig struct {
	// BackgroundLimit 后台并发执行上限（0 表示不限制）
	BackgroundLimit int `json:"background_limit" yaml:"background_limit"`

	// LoopQueueSize 事件循环队列初始容量（队列不设上限）
	LoopQueueSize int `json:"loop_queue_size" yaml:"loop_queue_size"`

	// StopTimeout 停止时等待执行中任务的最长时间
	StopTimeout Duration `json:"stop_timeout" yaml:"stop_timeout"`
}

// DefaultExecuteConfig 返回默认执行器配置
func DefaultExecuteConfig() ExecuteConfig {
	return ExecuteConfig{
		BackgroundLimit: 64,
		LoopQueueSize:   256,
		StopTimeout:     Duration(5 * time.Second),
	}
}

// Validate 验证执行器配置
func (c ExecuteConfig) Validate() error {
	if c.BackgroundLimit < 0 {
		return fmt.Errorf("execute: background limit must not be negative, got %d", c.BackgroundLimit)
	}
	if c.LoopQueueSize <= 0 {
		return fmt.Errorf("execute: loop queue size must be positive, got %d", c.LoopQueueSize)
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("execute: stop timeout must be positive")
	}
	return nil
}
