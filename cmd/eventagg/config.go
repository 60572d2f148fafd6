package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dep2p/go-eventagg/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量（均使用 EVENTAGG_ 前缀）
const (
	envPrefix        = "EVENTAGG_"
	envPreset        = "PRESET"
	envFailurePolicy = "FAILURE_POLICY"
	envLogLevel      = "LOG_LEVEL"
	envLogFormat     = "LOG_FORMAT"
)

// loadConfigFile 从 JSON 或 YAML 文件加载配置
//
// 按扩展名选择格式：.yaml / .yml 为 YAML，其余按 JSON 解析。
func loadConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FromYAML(data)
	default:
		return config.FromJSON(data)
	}
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 支持的环境变量：
//   - EVENTAGG_PRESET: 预设名称
//   - EVENTAGG_FAILURE_POLICY: 失败策略（isolate / propagate）
//   - EVENTAGG_LOG_LEVEL: 日志级别
//   - EVENTAGG_LOG_FORMAT: 日志格式（text / json）
func applyEnvOverrides(cfg *config.Config) error {
	if v := os.Getenv(envPrefix + envPreset); v != "" {
		if err := config.ApplyPreset(cfg, v); err != nil {
			return err
		}
	}
	if v := os.Getenv(envPrefix + envFailurePolicy); v != "" {
		cfg.Aggregator.FailurePolicy = config.FailurePolicy(v)
	}
	if v := os.Getenv(envPrefix + envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envPrefix + envLogFormat); v != "" {
		cfg.Log.Format = v
	}
	return nil
}
