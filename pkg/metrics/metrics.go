package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal HTTP请求计数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticeboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "noticeboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RotationTicks 轮播计时器触发次数，advanced 表示是否真正切换了内容
	RotationTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticeboard_rotation_ticks_total",
			Help: "Rotation timer ticks processed by display sessions",
		},
		[]string{"category", "advanced"},
	)

	// DisplaySessionsActive 当前活跃的展示会话数
	DisplaySessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "noticeboard_display_sessions_active",
			Help: "Number of live display sessions",
		},
	)

	// ExternalFetches 外部数据拉取结果
	ExternalFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticeboard_external_fetches_total",
			Help: "External data fetches by kind and status",
		},
		[]string{"kind", "status"},
	)

	// NewsItemsFetched 每个新闻源拉取到的条目数
	NewsItemsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticeboard_news_items_fetched_total",
			Help: "News items fetched per source",
		},
		[]string{"source"},
	)
)

// FetchStatus 将错误转换为状态标签
func FetchStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
