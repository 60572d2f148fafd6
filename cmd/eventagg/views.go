package main

import (
	"fmt"
	"io"
	"reflect"

	eventagg "github.com/dep2p/go-eventagg"
)

// ============================================================================
//                              演示消息
// ============================================================================

type message1 struct{}

type message2 struct{}

type message3 struct{}

type message4 struct{}

type message5 struct{}

// newMessage 按编号创建消息
func newMessage(n int) interface{} {
	switch n {
	case 1:
		return message1{}
	case 2:
		return message2{}
	case 3:
		return message3{}
	case 4:
		return message4{}
	case 5:
		return message5{}
	}
	return nil
}

// messageTypes 所有演示消息类型
var messageTypes = []reflect.Type{
	reflect.TypeFor[message1](),
	reflect.TypeFor[message2](),
	reflect.TypeFor[message3](),
	reflect.TypeFor[message4](),
	reflect.TypeFor[message5](),
}

// ============================================================================
//                              视图模型
// ============================================================================

// view 带编号的视图模型
type view interface {
	eventagg.Subscriber
	number() int
}

// viewBase 视图模型公共部分
type viewBase struct {
	n   int
	out io.Writer
}

func (v *viewBase) number() int { return v.n }

func (v *viewBase) received(msg interface{}) {
	fmt.Fprintf(v.out, "ViewModel%d Received %s\n", v.n, reflect.TypeOf(msg).Name())
}

// viewModel1 处理 message1 与 message3
type viewModel1 struct{ viewBase }

func (v *viewModel1) onMessage1(m message1) { v.received(m) }
func (v *viewModel1) onMessage3(m message3) { v.received(m) }

func (v *viewModel1) Handlers() []eventagg.Handler {
	return []eventagg.Handler{
		eventagg.On((*viewModel1).onMessage1),
		eventagg.On((*viewModel1).onMessage3),
	}
}

// viewModelFiltered 处理带过滤标签的 message1（编号 2、3、4 对应标签 M2、M3、M4）
type viewModelFiltered struct{ viewBase }

func (v *viewModelFiltered) onMessage1(m message1) { v.received(m) }

func (v *viewModelFiltered) Handlers() []eventagg.Handler {
	return []eventagg.Handler{eventagg.On((*viewModelFiltered).onMessage1)}
}

// viewModel5 处理无过滤的 message1
type viewModel5 struct{ viewBase }

func (v *viewModel5) onMessage1(m message1) { v.received(m) }

func (v *viewModel5) Handlers() []eventagg.Handler {
	return []eventagg.Handler{eventagg.On((*viewModel5).onMessage1)}
}

// newView 创建并订阅视图模型
func newView(agg eventagg.EventAggregator, n int, out io.Writer) (view, error) {
	base := viewBase{n: n, out: out}

	var v view
	switch n {
	case 1:
		v = &viewModel1{base}
	case 2, 3, 4:
		v = &viewModelFiltered{base}
	case 5:
		v = &viewModel5{base}
	default:
		return nil, fmt.Errorf("unknown view model %d", n)
	}

	if err := agg.Subscribe(v); err != nil {
		return nil, err
	}
	if n >= 2 && n <= 4 {
		if err := eventagg.SetFilterFor[message1](agg, v, fmt.Sprintf("M%d", n)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ============================================================================
//                              拓扑监视器
// ============================================================================

// mainWindow 订阅拓扑通知并打印剩余处理器数
type mainWindow struct {
	agg eventagg.EventAggregator
	out io.Writer
}

func (w *mainWindow) onAdded(m eventagg.MessageAdded) {
	fmt.Fprintf(w.out, "MainWindow MessageAdded: %s%s Remaining: %d\n",
		m.Type.Name(), filterSuffix(m.Filter), w.agg.HandlerCountFor(m.Type, m.Filter))
}

func (w *mainWindow) onRemoved(m eventagg.MessageRemoved) {
	fmt.Fprintf(w.out, "MainWindow MessageRemoved: %s%s Remaining: %d\n",
		m.Type.Name(), filterSuffix(m.Filter), w.agg.HandlerCountFor(m.Type, m.Filter))
}

func (w *mainWindow) Handlers() []eventagg.Handler {
	return []eventagg.Handler{
		eventagg.On((*mainWindow).onAdded),
		eventagg.On((*mainWindow).onRemoved),
	}
}

func filterSuffix(filter string) string {
	if filter == "" {
		return ""
	}
	return "[" + filter + "]"
}
