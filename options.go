package eventagg

import (
	"errors"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventagg/config"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 统一配置
	config *config.Config

	// 处理器钩子
	resultHook  pkgif.ResultHook
	failureHook pkgif.FailureHook

	// 指标注册
	registerer prometheus.Registerer

	// 计时时钟（测试时注入 clock.NewMock()）
	clock clock.Clock

	// 日志输出，非空时按 config.Log 配置全局日志
	logOutput io.Writer

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// WithConfig 使用给定配置（会被复制）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = configOrDefault(cfg.Clone())
		return nil
	}
}

// WithPreset 在当前配置上应用预设（default / strict / minimal）
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithFailurePolicy 设置处理器失败策略
func WithFailurePolicy(policy config.FailurePolicy) Option {
	return func(o *options) error {
		o.config.Aggregator.FailurePolicy = policy
		return nil
	}
}

// WithResultHook 设置本服务的处理器返回值钩子
//
// 优先于 SetHandlerResultProcessing 设置的进程级钩子。
func WithResultHook(hook pkgif.ResultHook) Option {
	return func(o *options) error {
		o.resultHook = hook
		return nil
	}
}

// WithFailureHook 设置处理器失败钩子（隔离策略下生效）
func WithFailureHook(hook pkgif.FailureHook) Option {
	return func(o *options) error {
		o.failureHook = hook
		return nil
	}
}

// WithRegisterer 设置 Prometheus 注册器
//
// 未设置时服务使用私有 Registry，可通过 Service.Gatherer 读取。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer is nil")
		}
		o.registerer = reg
		return nil
	}
}

// WithClock 设置处理器计时时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithLogOutput 按 config.Log 配置全局日志并输出到 w
func WithLogOutput(w io.Writer) Option {
	return func(o *options) error {
		o.logOutput = w
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
