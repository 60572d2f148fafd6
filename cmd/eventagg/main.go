// Package main 提供 eventagg 演示命令行
//
// 复现事件聚合器测试程序：创建/释放视图模型、发布消息、触发 GC，
// 并通过拓扑通知观察处理器的出现与消失。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventagg "github.com/dep2p/go-eventagg"
	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/pkg/lib/log"
)

var logger = log.Logger("eventagg/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile    = flag.String("config", "", "配置文件路径（.json / .yaml）")
	preset        = flag.String("preset", "", "预设配置 (default/strict/minimal)")
	failurePolicy = flag.String("failure-policy", "", "处理器失败策略 (isolate/propagate)")
	useLoop       = flag.Bool("loop", false, "在事件循环上投递消息")
	script        = flag.String("script", "", "以分号分隔的命令序列，执行后退出")
	metricsAddr   = flag.String("metrics-addr", "", "Prometheus 指标监听地址（如 :9100）")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println("eventagg", eventagg.Version)
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	svc, err := eventagg.New(
		eventagg.WithConfig(cfg),
		eventagg.WithLogOutput(os.Stderr),
		eventagg.WithFailureHook(func(err *eventagg.HandlerError) {
			fmt.Fprintf(os.Stdout, "处理器失败: %v\n", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("创建服务失败: %w", err)
	}

	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			logger.Warn("停止服务失败", "error", err)
		}
	}()

	if *metricsAddr != "" {
		srv, err := serveMetrics(svc, *metricsAddr)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	sh, err := newShell(svc, os.Stdout, *useLoop)
	if err != nil {
		return err
	}

	if *script != "" {
		return sh.runScript(*script)
	}

	printCommands(os.Stdout)
	return sh.run(os.Stdin, true)
}

// buildConfig 合并配置文件、环境变量与命令行参数
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := loadConfigFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件: %w", err)
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if *preset != "" {
		if err := config.ApplyPreset(cfg, *preset); err != nil {
			return nil, err
		}
	}
	if *failurePolicy != "" {
		cfg.Aggregator.FailurePolicy = config.FailurePolicy(*failurePolicy)
	}

	return cfg, cfg.Validate()
}

// serveMetrics 启动 Prometheus 指标 HTTP 服务
func serveMetrics(svc *eventagg.Service, addr string) (*http.Server, error) {
	gatherer := svc.Gatherer()
	if gatherer == nil {
		return nil, errors.New("指标已关闭，无法启动指标服务")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "error", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv, nil
}

func printHelp() {
	fmt.Println("用法: eventagg [选项]")
	fmt.Println()
	flag.PrintDefaults()
	fmt.Println()
	printCommands(os.Stdout)
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println(`  eventagg -script "add 1; add 2; add 5; msg 1; msg 1 M2; remove 5; gc; msg 1; count"`)
}
