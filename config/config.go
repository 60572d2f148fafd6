// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / YAML 加载和保存配置
//   - 支持预设配置（default/strict/minimal）
//
// 注意：本包不负责读取文件，配置文件的 I/O 由应用层（cmd/*）完成。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Aggregator.FailurePolicy = config.FailurePropagate
//
//	// 从 YAML 加载
//	cfg, err := config.FromYAML(data)
package config

import "errors"

// Config 是 EventAgg 的完整配置结构
//
// 配置按照功能模块组织：
//   - Aggregator: 订阅注册表与分发器
//   - Execute: 线程封送执行器（后台、事件循环）
//   - Metrics: Prometheus 指标
//   - Log: 日志输出
type Config struct {
	// Aggregator 聚合器配置
	Aggregator AggregatorConfig `json:"aggregator" yaml:"aggregator"`

	// Execute 执行器配置
	Execute ExecuteConfig `json:"execute" yaml:"execute"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Aggregator: DefaultAggregatorConfig(),
		Execute:    DefaultExecuteConfig(),
		Metrics:    DefaultMetricsConfig(),
		Log:        DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Aggregator.Validate(); err != nil {
		return err
	}
	if err := c.Execute.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
