// Package metrics はレポート生成と gRPC 呼び出しの Prometheus メトリクスを提供します。
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

const namespace = "compliance"

// Metrics は専用レジストリに登録したコレクタの集合です。
type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	completed   *prometheus.CounterVec
	failed      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rows        *prometheus.HistogramVec
	rpcs        *prometheus.CounterVec
	rpcLatency  *prometheus.HistogramVec
}

var _ report.Observer = (*Metrics)(nil)

// New はメトリクスを生成し、プロセスと Go ランタイムのコレクタも登録します。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "stage_transitions_total",
			Help:      "Report pipeline stage transitions.",
		}, []string{"type", "from", "to"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "completed_total",
			Help:      "Reports generated successfully.",
		}, []string{"type", "format"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "failed_total",
			Help:      "Report generations that ended in the failed state.",
		}, []string{"type", "stage", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generation_seconds",
			Help:      "Time from request to completed report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type", "format"}),
		rows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "rows",
			Help:      "Rows per generated report.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"type"}),
		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Unary RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "request_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		m.transitions, m.completed, m.failed, m.duration, m.rows, m.rpcs, m.rpcLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry は登録先のレジストリです。
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler は /metrics 用の HTTP ハンドラです。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Transition(t report.Type, from, to report.State) {
	m.transitions.WithLabelValues(typeLabel(t), string(from), string(to)).Inc()
}

func (m *Metrics) Completed(t report.Type, f report.Format, rows int, elapsed time.Duration) {
	m.completed.WithLabelValues(t.String(), f.String()).Inc()
	m.duration.WithLabelValues(t.String(), f.String()).Observe(elapsed.Seconds())
	m.rows.WithLabelValues(t.String()).Observe(float64(rows))
}

func (m *Metrics) Failed(t report.Type, stage report.State, err error) {
	kind := "unknown"
	if k, ok := domainerr.KindOf(err); ok {
		kind = string(k)
	}
	m.failed.WithLabelValues(typeLabel(t), string(stage), kind).Inc()
}

// UnaryServerInterceptor は RPC ごとの件数と所要時間を記録します。
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.rpcs.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.rpcLatency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

func typeLabel(t report.Type) string {
	if t.String() == "" {
		return "unknown"
	}
	return t.String()
}
