package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lost_university"

// Metrics 服务的全部 Prometheus 指标。
// 所有记录方法在接收者为 nil 时直接返回，未启用指标时可以传 nil。
type Metrics struct {
	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// 计划编解码
	PlanDecodes    *prometheus.CounterVec
	UnknownModules prometheus.Counter
	PlanEncodes    prometheus.Counter

	// 校验
	Findings *prometheus.CounterVec

	// 目录
	CatalogModules      prometheus.Gauge
	CatalogSyncs        *prometheus.CounterVec
	CatalogSyncDuration prometheus.Histogram

	// 会话缓存
	SessionCache *prometheus.CounterVec
}

// NewMetrics 在 registry 上注册全部指标
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP 请求总数",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP 请求耗时（秒）",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		PlanDecodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_decodes_total",
				Help:      "计划文本解码次数，result=canonical|rewritten|legacy|no_plan",
			},
			[]string{"result"},
		),
		UnknownModules: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_unknown_modules_total",
				Help:      "解码时丢弃的未知模块 ID 数量",
			},
		),
		PlanEncodes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_encodes_total",
				Help:      "计划编码次数",
			},
		),

		Findings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_findings_total",
				Help:      "校验结果数量",
			},
			[]string{"kind", "severity"},
		),

		CatalogModules: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_modules",
				Help:      "当前目录快照中的模块数量",
			},
		),
		CatalogSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_syncs_total",
				Help:      "目录同步次数",
			},
			[]string{"source", "success"},
		),
		CatalogSyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_sync_duration_seconds",
				Help:      "目录同步耗时（秒）",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		SessionCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_cache_total",
				Help:      "会话缓存读写次数，op=hit|miss|store|error",
			},
			[]string{"op"},
		),
	}
}

// NewRegistry 创建独立的 registry 及其上的指标（附带 Go 运行时与进程指标）
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, NewMetrics(reg)
}

// HandlerFor 返回指定 registry 的 /metrics 处理器
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ── 记录方法 ──

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(latency.Seconds())
}

// ObserveDecode 记录一次解码结果
func (m *Metrics) ObserveDecode(result string, unknown int) {
	if m == nil {
		return
	}
	m.PlanDecodes.WithLabelValues(result).Inc()
	if unknown > 0 {
		m.UnknownModules.Add(float64(unknown))
	}
}

// ObserveEncode 记录一次编码
func (m *Metrics) ObserveEncode() {
	if m == nil {
		return
	}
	m.PlanEncodes.Inc()
}

// ObserveFinding 记录一条校验结果
func (m *Metrics) ObserveFinding(kind, severity string) {
	if m == nil {
		return
	}
	m.Findings.WithLabelValues(kind, severity).Inc()
}

// ObserveCatalogSync 记录一次目录同步
func (m *Metrics) ObserveCatalogSync(source string, success bool, modules int, duration time.Duration) {
	if m == nil {
		return
	}
	m.CatalogSyncs.WithLabelValues(source, strconv.FormatBool(success)).Inc()
	m.CatalogSyncDuration.Observe(duration.Seconds())
	if success {
		m.CatalogModules.Set(float64(modules))
	}
}

// ObserveSessionCache 记录一次会话缓存操作
func (m *Metrics) ObserveSessionCache(op string) {
	if m == nil {
		return
	}
	m.SessionCache.WithLabelValues(op).Inc()
}
