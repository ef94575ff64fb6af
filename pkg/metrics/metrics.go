// Package metrics Prometheus-метрики сервиса: HTTP, БД и вебхуки
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics коллектор метрик сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbPoolOpen      *prometheus.GaugeVec
	dbPoolInUse     *prometheus.GaugeVec
	dbPoolIdle      *prometheus.GaugeVec

	webhookEventsTotal     *prometheus.CounterVec
	webhookUnresolvedTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		dbPoolOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		dbPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		dbPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		webhookEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_webhook_events_total",
			Help:        "Total number of payment gateway webhook events by outcome",
			ConstLabels: constLabels,
		}, []string{"type", "outcome"}),

		webhookUnresolvedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_webhook_unresolved_total",
			Help:        "Webhook events that exhausted processing attempts and need operator triage",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует запрос к БД
func (m *Metrics) ObserveDBQuery(operation, status string, duration time.Duration) {
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет gauges состояния connection pool
func (m *Metrics) SetDBPoolStats(db string, open, inUse, idle int) {
	m.dbPoolOpen.WithLabelValues(db).Set(float64(open))
	m.dbPoolInUse.WithLabelValues(db).Set(float64(inUse))
	m.dbPoolIdle.WithLabelValues(db).Set(float64(idle))
}

// ObserveWebhookEvent фиксирует исход обработки события платёжного шлюза
// Безопасен при выключенных метриках (nil-получатель)
func (m *Metrics) ObserveWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// ObserveWebhookUnresolved фиксирует событие, исчерпавшее лимит попыток
func (m *Metrics) ObserveWebhookUnresolved(eventType string) {
	if m == nil {
		return
	}
	m.webhookUnresolvedTotal.WithLabelValues(eventType).Inc()
}
