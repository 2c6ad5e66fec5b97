// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPリクエストの記録はミドルウェアから、メール生成の記録は
// ハンドラーから呼ばれる。
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram
	emailDrafts  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrack_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobtrack_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		emailDrafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrack_email_drafts_total",
			Help: "生成元（ai/template）別のメール下書き生成数",
		}, []string{"generated_by"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.emailDrafts,
	)

	return c
}

// ObserveRequest はHTTPリクエストの結果を記録する。
// パスはIDを含みカーディナリティが際限なく増えるため、ラベルには使わない。
func (c *Collector) ObserveRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordEmailDraft はメール下書きの生成を生成元別に記録する。
func (c *Collector) RecordEmailDraft(generatedBy string) {
	c.emailDrafts.WithLabelValues(generatedBy).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
