package aggregator

import (
	"reflect"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-eventagg/config"
	"github.com/dep2p/go-eventagg/internal/core/execute"
	"github.com/dep2p/go-eventagg/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventagg/pkg/interfaces"
	"github.com/dep2p/go-eventagg/pkg/types"
)

// dispatcher 消息投递
//
// 发布时在锁内取快照，锁外遍历；处理器执行期间不持有任何锁，
// 处理器因此可以重入 Subscribe / Unsubscribe / Publish。
type dispatcher struct {
	registry *registry
	matcher  *typeMatcher

	policy      config.FailurePolicy
	resultHook  pkgif.ResultHook
	failureHook pkgif.FailureHook

	reporter metrics.Reporter
	clock    clock.Clock

	// failureLog 默认失败钩子的日志限流
	failureLog *rate.Limiter
}

// publish 发布消息
//
// marshal 恰好调用一次，快照为空时也不例外。
func (d *dispatcher) publish(message interface{}, marshal pkgif.Marshal, filter string) error {
	if message == nil {
		return types.ErrNilMessage
	}
	if marshal == nil {
		return types.ErrNilMarshal
	}

	messageType := reflect.TypeOf(message)
	snapshot := d.registry.snapshot()
	d.reporter.LogPublish(messageType.String())

	marshal(func() {
		var dead []*record
		for _, rec := range snapshot {
			if !d.tryHandle(rec, messageType, message, filter) {
				dead = append(dead, rec)
			}
		}
		d.reap(dead)
	})
	return nil
}

// tryHandle 在一条记录上投递消息
//
// 订阅者不可达时返回 false 且不调用任何处理器；
// 否则调用所有类型与过滤标签都匹配的处理器并返回 true（即使没有匹配项）。
func (d *dispatcher) tryHandle(rec *record, messageType reflect.Type, message interface{}, filter string) bool {
	subject, ok := rec.ref.Value()
	if !ok {
		return false
	}
	for _, e := range rec.entries {
		if !d.matcher.matches(e.messageType, messageType) || !e.accepts(filter) {
			continue
		}
		d.invoke(rec, e, subject, message)
	}
	return true
}

// invoke 调用单个处理器
func (d *dispatcher) invoke(rec *record, e *entry, subject, message interface{}) {
	start := d.clock.Now()
	result, herr := d.call(rec, e, subject, message)
	d.reporter.LogHandler(e.messageType.String(), d.clock.Since(start), herr != nil)

	if herr != nil {
		if d.policy == config.FailurePropagate {
			panic(herr)
		}
		d.failureHook(herr)
		return
	}

	if result != nil && d.resultHook != nil {
		d.resultHook(subject, result)
	}
}

// call 执行处理器，把 panic 与返回的错误统一包装为 HandlerError
func (d *dispatcher) call(rec *record, e *entry, subject, message interface{}) (result interface{}, herr *types.HandlerError) {
	defer func() {
		if r := recover(); r != nil {
			herr = d.handlerError(rec, e, types.PanicError(r), true)
		}
	}()

	result, err := e.handler.Invoke(subject, message)
	if err != nil {
		return nil, d.handlerError(rec, e, err, false)
	}
	return result, nil
}

func (d *dispatcher) handlerError(rec *record, e *entry, cause error, panicked bool) *types.HandlerError {
	return &types.HandlerError{
		RecordID:    rec.id.String(),
		SubjectType: rec.subjectType,
		MessageType: e.messageType,
		Panicked:    panicked,
		Cause:       cause,
	}
}

// logFailure 默认失败钩子：限流记录错误日志
func (d *dispatcher) logFailure(err *types.HandlerError) {
	if !d.failureLog.Allow() {
		return
	}
	logger.Error("处理器调用失败",
		"record", err.RecordID,
		"subject", err.SubjectType,
		"message", err.MessageType,
		"panicked", err.Panicked,
		"error", err.Cause)
}

// ============================================================================
// 回收与拓扑通知
// ============================================================================

// reap 回收本次遍历发现的失效记录并发布 MessageRemoved
func (d *dispatcher) reap(dead []*record) {
	if len(dead) == 0 {
		return
	}
	n, events := d.registry.reap(dead)
	if n > 0 {
		d.reporter.LogReaped(n)
		logger.Debug("回收失效订阅", "count", n)
	}
	d.commit(events)
}

// commit 在注册表修改后更新指标，并在当前 goroutine 上同步发布拓扑通知
//
// 调用方不得持有注册表锁。
func (d *dispatcher) commit(events []interface{}) {
	d.reporter.SetRecords(d.registry.size())

	for _, ev := range events {
		switch ev.(type) {
		case types.MessageAdded:
			d.reporter.LogNotification(metrics.NotificationAdded)
		case types.MessageRemoved:
			d.reporter.LogNotification(metrics.NotificationRemoved)
		}
		// 参数均非空，不会失败
		_ = d.publish(ev, execute.Immediate, "")
	}
}
