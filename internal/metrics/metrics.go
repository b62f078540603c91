// Package metrics содержит Prometheus-метрики операций аутентификации.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы операций для метки outcome.
const (
	OutcomeSuccess         = "success"
	OutcomeUserExists      = "user_exists"
	OutcomeUserNotFound    = "user_not_found"
	OutcomeWrongPassword   = "wrong_password"
	OutcomePasswordTooLong = "password_too_long"
	OutcomeTokenExpired    = "token_expired"
	OutcomeTokenInvalid    = "token_invalid"
	OutcomeError           = "error"
)

// Metrics счётчики и гистограммы операций сервиса.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_auth_operation_duration_seconds",
				Help:    "Latency of auth operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_auth_user_cache_lookups_total",
				Help: "User cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.OperationsTotal, m.OperationDuration, m.CacheLookups)
	return m
}

// Record учитывает завершённую операцию.
func (m *Metrics) Record(operation, outcome string, d time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// CacheLookup учитывает попадание или промах кэша пользователей.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// NewRegistry возвращает отдельный реестр со стандартными Go- и process-коллекторами.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler отдаёт метрики реестра в формате Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
