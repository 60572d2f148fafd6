package eventagg

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/aggregator"
	"github.com/dep2p/go-eventagg/internal/core/execute"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/lib/log"
	"github.com/dep2p/go-eventagg/pkg/types"
)

var logger = log.Logger("eventagg")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// ════════════════════════════════════════════════════════════════════════════
//                              Service
// ════════════════════════════════════════════════════════════════════════════

// Service 事件聚合服务
//
// 组装聚合器、内置执行器与指标，由 Fx 管理生命周期。
// Aggregator() 在 New 返回后即可使用；Loop() 在 Start 之后才接收任务。
type Service struct {
	mu      sync.Mutex
	started bool
	stopped bool

	app    *fx.App
	config *config.Config

	agg      *aggregator.Aggregator
	loop     *execute.Loop
	bg       *execute.Background
	gatherer prometheus.Gatherer
}

// New 创建事件聚合服务
//
// 示例：
//
//	svc, err := eventagg.New(
//	    eventagg.WithPreset("strict"),
//	    eventagg.WithFailureHook(func(err *eventagg.HandlerError) { ... }),
//	)
func New(opts ...Option) (*Service, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if o.logOutput != nil {
		if err := log.Configure(o.config.Log.Level, o.config.Log.Format, o.logOutput); err != nil {
			return nil, fmt.Errorf("configure log: %w", err)
		}
	}

	s := &Service{config: o.config}

	app, err := buildFxApp(o, s)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	s.app = app

	return s, nil
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrServiceStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}

	if err := s.app.Start(ctx); err != nil {
		logger.Error("服务启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}
	s.started = true
	logger.InfoContext(ctx, "事件聚合服务已启动", "version", Version, "failurePolicy", s.config.Aggregator.FailurePolicy)
	return nil
}

// Stop 停止服务
//
// 关闭执行器并清理失效订阅。停止后不能再次启动。
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if !s.started {
		return ErrNotStarted
	}

	s.stopped = true
	if err := s.app.Stop(ctx); err != nil {
		logger.Error("服务停止失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.InfoContext(ctx, "事件聚合服务已停止")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              访问器
// ════════════════════════════════════════════════════════════════════════════

// Aggregator 返回事件聚合器
func (s *Service) Aggregator() pkgif.EventAggregator {
	return s.agg
}

// Loop 返回内置事件循环
func (s *Service) Loop() pkgif.LoopExecutor {
	return s.loop
}

// Background 返回内置后台执行器
func (s *Service) Background() pkgif.Executor {
	return s.bg
}

// Gatherer 返回指标采集器
//
// 指标关闭或注入的 Registerer 不支持采集时返回 nil。
func (s *Service) Gatherer() prometheus.Gatherer {
	return s.gatherer
}

// Config 返回服务使用的配置副本
func (s *Service) Config() *config.Config {
	return s.config.Clone()
}

// Prune 立即移除所有订阅者已不可达的记录
func (s *Service) Prune() int {
	return s.agg.Prune()
}

// Inspect 返回所有订阅记录的快照
func (s *Service) Inspect() []types.SubscriptionInfo {
	return s.agg.Inspect()
}
