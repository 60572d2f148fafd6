package aggregator

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Hooks 处理器钩子
//
// 由上层以 fx.Supply(&aggregator.Hooks{...}) 注入。
type Hooks struct {
	Result  pkgif.ResultHook
	Failure pkgif.FailureHook
}

// Params 聚合器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
	Hooks      *Hooks           `optional:"true"`
	Clock      clock.Clock      `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Aggregator      *Aggregator
	EventAggregator pkgif.EventAggregator
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("aggregator",
		fx.Provide(ProvideAggregator),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideAggregator 提供 Aggregator 实例
func ProvideAggregator(p Params) (Result, error) {
	opts := []Option{
		WithReporter(p.Reporter),
		WithClock(p.Clock),
	}
	if p.Hooks != nil {
		opts = append(opts,
			WithResultHook(p.Hooks.Result),
			WithFailureHook(p.Hooks.Failure),
		)
	}

	agg, err := New(ConfigFromUnified(p.UnifiedCfg), opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Aggregator:      agg,
		EventAggregator: agg,
	}, nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Aggregator *Aggregator
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			n := input.Aggregator.Prune()
			logger.DebugContext(ctx, "聚合器停止", "pruned", n, "records", input.Aggregator.Len())
			return nil
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "aggregator"
	// Description 模块描述
	Description = "事件聚合器模块，提供弱引用订阅、过滤标签与拓扑通知"
)
