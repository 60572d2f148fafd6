package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromReporter 基于 Prometheus 的 Reporter 实现
type PromReporter struct {
	publishes     *prometheus.CounterVec
	invocations   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	reaped        prometheus.Counter
	notifications *prometheus.CounterVec
	records       prometheus.Gauge
}

// 确保 PromReporter 实现 Reporter 接口
var _ Reporter = (*PromReporter)(nil)

// NewPromReporter 创建 Prometheus Reporter 并注册到 reg
func NewPromReporter(reg prometheus.Registerer, namespace string) (*PromReporter, error) {
	r := &PromReporter{
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Messages published, by message type.",
		}, []string{"type"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_invocations_total",
			Help:      "Handler invocations, by registered message type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Handler invocations that panicked or returned an error.",
		}, []string{"type"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler invocation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"type"}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaped_subscriptions_total",
			Help:      "Subscriptions removed because the subscriber was reclaimed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_notifications_total",
			Help:      "MessageAdded/MessageRemoved notifications published by the aggregator.",
		}, []string{"kind"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Subscription records currently registered.",
		}),
	}

	collectors := []prometheus.Collector{
		r.publishes, r.invocations, r.failures, r.latency, r.reaped, r.notifications, r.records,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LogPublish 实现 Reporter
func (r *PromReporter) LogPublish(messageType string) {
	r.publishes.WithLabelValues(messageType).Inc()
}

// LogHandler 实现 Reporter
func (r *PromReporter) LogHandler(messageType string, elapsed time.Duration, failed bool) {
	r.invocations.WithLabelValues(messageType).Inc()
	r.latency.WithLabelValues(messageType).Observe(elapsed.Seconds())
	if failed {
		r.failures.WithLabelValues(messageType).Inc()
	}
}

// LogReaped 实现 Reporter
func (r *PromReporter) LogReaped(n int) {
	r.reaped.Add(float64(n))
}

// LogNotification 实现 Reporter
func (r *PromReporter) LogNotification(kind string) {
	r.notifications.WithLabelValues(kind).Inc()
}

// SetRecords 实现 Reporter
func (r *PromReporter) SetRecords(n int) {
	r.records.Set(float64(n))
}
