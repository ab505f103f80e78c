// Package metrics содержит Prometheus-метрики сервиса
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBPoolOpenConns *prometheus.GaugeVec
	DBPoolIdleConns *prometheus.GaugeVec
	DBPoolInUse     *prometheus.GaugeVec

	SweeperRunsTotal  prometheus.Counter
	ExpiredHoldsTotal prometheus.Counter
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBPoolOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SweeperRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "hold_sweeper_runs_total",
			Help:        "Total number of hold sweeper runs",
			ConstLabels: constLabels,
		}),

		ExpiredHoldsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "hold_sweeper_expired_groups_total",
			Help:        "Total number of booking groups expired by the sweeper",
			ConstLabels: constLabels,
		}),
	}
}

// IncSweeperRuns увеличивает счетчик запусков sweeper'а
func (m *Metrics) IncSweeperRuns() {
	m.SweeperRunsTotal.Inc()
}

// AddExpiredHolds увеличивает счетчик истекших групп
func (m *Metrics) AddExpiredHolds(n int) {
	m.ExpiredHoldsTotal.Add(float64(n))
}
