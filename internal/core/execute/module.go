package execute

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-eventagg/config"
)

// ============================================================================
// 配置
// ============================================================================

// Config 执行器配置
type Config struct {
	// BackgroundLimit 后台并发上限
	BackgroundLimit int

	// LoopQueueSize 事件循环队列初始容量（队列不设上限）
	LoopQueueSize int

	// StopTimeout 停止超时
	StopTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建执行器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := config.DefaultExecuteConfig()
	if cfg != nil {
		c = cfg.Execute
	}
	return Config{
		BackgroundLimit: c.BackgroundLimit,
		LoopQueueSize:   c.LoopQueueSize,
		StopTimeout:     c.StopTimeout.Duration(),
	}
}

// ============================================================================
// Fx 模块
// ============================================================================

// Params 执行器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Loop       *Loop
	Background *Background
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("execute",
		fx.Provide(ProvideExecutors),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideExecutors 提供内置执行器
func ProvideExecutors(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	return Result{
		Loop:       NewLoop(cfg.LoopQueueSize),
		Background: NewBackground(cfg.BackgroundLimit),
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Loop       *Loop
	Background *Background
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	cfg := ConfigFromUnified(input.UnifiedCfg)

	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			input.Loop.Start()
			logger.DebugContext(ctx, "事件循环已启动", "queueSize", cfg.LoopQueueSize)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.StopTimeout)
			defer cancel()

			err := multierr.Combine(
				input.Loop.Close(ctx),
				input.Background.Close(ctx),
			)
			if err != nil {
				logger.Warn("执行器关闭超时", "error", err)
			}
			return err
		},
	})
}
