package config

import (
	"fmt"

	"github.com/dep2p/go-eventagg/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别（debug/info/warn/error）
	Level string `json:"level" yaml:"level"`

	// Format 日志格式（text/json）
	Format string `json:"format" yaml:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: log.FormatText,
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch c.Format {
	case "", log.FormatText, log.FormatJSON:
		return nil
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
}
