package main

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strconv"
	"strings"

	eventagg "github.com/dep2p/go-eventagg"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
)

// shell 演示命令解释器
//
// 与测试程序的按钮一一对应：添加/移除视图模型、发布消息、触发 GC、打印计数。
type shell struct {
	svc *eventagg.Service
	agg eventagg.EventAggregator
	out io.Writer

	// useLoop 为 true 时在事件循环上投递
	useLoop bool

	// views 持有视图模型的强引用，移除后等待 GC 回收
	views []view

	// window 订阅拓扑通知，生命周期与 shell 相同
	window *mainWindow
}

func newShell(svc *eventagg.Service, out io.Writer, useLoop bool) (*shell, error) {
	s := &shell{
		svc:     svc,
		agg:     svc.Aggregator(),
		out:     out,
		useLoop: useLoop,
		window:  &mainWindow{agg: svc.Aggregator(), out: out},
	}
	if err := s.agg.Subscribe(s.window); err != nil {
		return nil, err
	}
	return s, nil
}

// run 逐行执行命令，直到输入结束或 quit
func (s *shell) run(in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(s.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := s.exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "错误: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// runScript 执行以分号分隔的命令序列
func (s *shell) runScript(script string) error {
	for _, line := range strings.Split(script, ";") {
		quit, err := s.exec(line)
		if err != nil {
			return fmt.Errorf("%q: %w", strings.TrimSpace(line), err)
		}
		if quit {
			return nil
		}
	}
	return nil
}

// exec 执行单条命令
func (s *shell) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "add":
		n, err := viewNumber(args)
		if err != nil {
			return false, err
		}
		v, err := newView(s.agg, n, s.out)
		if err != nil {
			return false, err
		}
		s.views = append(s.views, v)

	case "remove":
		n, err := viewNumber(args)
		if err != nil {
			return false, err
		}
		// 只释放引用，不取消订阅
		s.drop(n)

	case "unsubscribe":
		n, err := viewNumber(args)
		if err != nil {
			return false, err
		}
		if v := s.drop(n); v != nil {
			return false, s.agg.Unsubscribe(v)
		}

	case "msg":
		n, err := viewNumber(args)
		if err != nil {
			return false, err
		}
		var opts []pkgif.PublishOpt
		if len(args) > 1 {
			opts = append(opts, eventagg.PublishFilter(args[1]))
		}
		return false, s.publish(newMessage(n), opts...)

	case "gc":
		runtime.GC()
		runtime.GC()

	case "count":
		s.printCounts()

	case "inspect":
		s.printInspect()

	case "prune":
		fmt.Fprintf(s.out, "Pruned: %d\n", s.svc.Prune())

	case "help":
		printCommands(s.out)

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

func (s *shell) publish(msg interface{}, opts ...pkgif.PublishOpt) error {
	if s.useLoop {
		return eventagg.PublishOnLoop(s.agg, s.svc.Loop(), msg, opts...)
	}
	return eventagg.PublishOnCurrentThread(s.agg, msg, opts...)
}

// drop 释放第一个编号为 n 的视图模型
func (s *shell) drop(n int) view {
	for i, v := range s.views {
		if v.number() == n {
			// slices.Delete 清空尾部元素，不残留引用
			s.views = slices.Delete(s.views, i, i+1)
			return v
		}
	}
	return nil
}

func (s *shell) printCounts() {
	for _, t := range messageTypes {
		fmt.Fprintf(s.out, "Count for %s: %d\n", t.Name(), s.agg.HandlerCountFor(t, ""))
	}
	t := messageTypes[0]
	for _, f := range s.agg.ActiveFiltersForType(t) {
		fmt.Fprintf(s.out, "Count for %s[%s]: %d\n", t.Name(), f, s.agg.HandlerCountFor(t, f))
	}
}

func (s *shell) printInspect() {
	for _, info := range s.svc.Inspect() {
		state := "alive"
		if !info.Alive {
			state = "dead"
		}
		fmt.Fprintf(s.out, "%s %s (%s)\n", info.ID[:8], info.SubjectType, state)
		for _, h := range info.Handlers {
			fmt.Fprintf(s.out, "    %s%s\n", h.MessageType, filterSuffix(h.Filter))
		}
	}
}

func viewNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing number (1-5)")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("invalid number %q (1-5)", args[0])
	}
	return n, nil
}

func printCommands(w io.Writer) {
	fmt.Fprintln(w, `命令:
  add N           创建 ViewModelN 并订阅（2/3/4 过滤标签为 M2/M3/M4）
  remove N        释放 ViewModelN 的引用（不取消订阅，等待 GC 回收）
  unsubscribe N   释放并显式取消订阅 ViewModelN
  msg N [filter]  发布 MessageN，可携带过滤标签
  gc              触发垃圾回收
  count           打印各消息类型的处理器数
  inspect         打印订阅记录
  prune           立即清理已回收的订阅者
  quit            退出`)
}
