package eventagg

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/aggregator"
	"github.com/dep2p/go-eventagg/internal/core/execute"
	"github.com/dep2p/go-eventagg/internal/core/metrics"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与钩子
//  2. metrics → execute → aggregator
//  3. 用户自定义 Fx 选项
func buildFxApp(o *options, s *Service) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 配置、钩子与指标注册
	// ════════════════════════════════════════════════════════════════════════
	resultHook := o.resultHook
	if resultHook == nil {
		resultHook = HandlerResultProcessing()
	}
	hooks := &aggregator.Hooks{
		Result:  resultHook,
		Failure: o.failureHook,
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Supply(hooks),
	}

	if o.config.Metrics.Enabled {
		reg := o.registerer
		if reg == nil {
			r := prometheus.NewRegistry()
			reg = r
			s.gatherer = r
		} else if g, ok := reg.(prometheus.Gatherer); ok {
			s.gatherer = g
		}
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,
		execute.Module(),
		aggregator.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户自定义选项
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// 5. 导出组件与 Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Populate(&s.agg, &s.loop, &s.bg),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// configOrDefault 返回非空配置
func configOrDefault(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.NewConfig()
	}
	return cfg
}
