// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はAPIゲートウェイのメトリクス収集のインターフェース。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordNetworkError()
	RecordSessionInvalidation()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus          *prometheus.CounterVec
	requestLatency      prometheus.Histogram
	networkErrors       prometheus.Counter
	sessionInvalidation prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tosho_api_http_status_total",
			Help: "HTTPステータスコード別のAPIレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tosho_api_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		networkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tosho_api_network_errors_total",
			Help: "レスポンス未到達で失敗したAPIリクエストの合計数",
		}),
		sessionInvalidation: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tosho_session_invalidations_total",
			Help: "認可失敗によるセッション無効化の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.networkErrors,
		c.sessionInvalidation,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordNetworkError はネットワークエラーを記録する。
func (c *Collector) RecordNetworkError() {
	c.networkErrors.Inc()
}

// RecordSessionInvalidation はセッション無効化を記録する。
func (c *Collector) RecordSessionInvalidation() {
	c.sessionInvalidation.Inc()
}

// NopCollector は何も記録しないMetricsCollectorの実装。
// メトリクスを無効化したいテストなどで使用する。
type NopCollector struct{}

// RecordHTTPStatus は何もしない。
func (NopCollector) RecordHTTPStatus(statusCode int) {}

// RecordRequestLatency は何もしない。
func (NopCollector) RecordRequestLatency(duration time.Duration) {}

// RecordNetworkError は何もしない。
func (NopCollector) RecordNetworkError() {}

// RecordSessionInvalidation は何もしない。
func (NopCollector) RecordSessionInvalidation() {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
