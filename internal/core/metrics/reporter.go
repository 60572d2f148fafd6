package metrics

import "time"

// Reporter 记录聚合器运行指标
//
// 聚合器在热路径上调用 Reporter，实现必须并发安全且开销低。
type Reporter interface {
	// LogPublish 记录一次发布
	LogPublish(messageType string)

	// LogHandler 记录一次处理器调用
	LogHandler(messageType string, elapsed time.Duration, failed bool)

	// LogReaped 记录被回收的失效订阅数
	LogReaped(n int)

	// LogNotification 记录一条拓扑通知（added/removed）
	LogNotification(kind string)

	// SetRecords 设置当前订阅记录数
	SetRecords(n int)
}

// 拓扑通知种类
const (
	NotificationAdded   = "added"
	NotificationRemoved = "removed"
)

// NopReporter 不记录任何指标
type NopReporter struct{}

// 确保 NopReporter 实现 Reporter 接口
var _ Reporter = NopReporter{}

// LogPublish 实现 Reporter
func (NopReporter) LogPublish(string) {}

// LogHandler 实现 Reporter
func (NopReporter) LogHandler(string, time.Duration, bool) {}

// LogReaped 实现 Reporter
func (NopReporter) LogReaped(int) {}

// LogNotification 实现 Reporter
func (NopReporter) LogNotification(string) {}

// SetRecords 实现 Reporter
func (NopReporter) SetRecords(int) {}
