package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the write-off service metrics on a private Prometheus registry
type Registry struct {
	reg             *prometheus.Registry
	Runs            *prometheus.CounterVec
	GoodsReconciled prometheus.Counter
	GoodsUnmatched  prometheus.Gauge
	RunLatencySec   prometheus.Histogram

	// Collaborators
	SalesPages        prometheus.Counter
	FilesExported     prometheus.Counter
	AssortmentSynced  prometheus.Gauge
	NotificationsSent *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "writeoff_runs_total"}, []string{"product_type", "status"})
	reconciled := prometheus.NewCounter(prometheus.CounterOpts{Name: "writeoff_goods_reconciled_total"})
	unmatched := prometheus.NewGauge(prometheus.GaugeOpts{Name: "writeoff_last_run_unmatched_goods"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "writeoff_run_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	salesPages := prometheus.NewCounter(prometheus.CounterOpts{Name: "moysklad_retaildemand_pages_total"})
	exported := prometheus.NewCounter(prometheus.CounterOpts{Name: "writeoff_files_exported_total"})
	assortment := prometheus.NewGauge(prometheus.GaugeOpts{Name: "egais_assortment_products"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "telegram_notifications_total"}, []string{"kind", "status"})

	r.MustRegister(runs, reconciled, unmatched, latency, salesPages, exported, assortment, notifications)
	return &Registry{
		reg:               r,
		Runs:              runs,
		GoodsReconciled:   reconciled,
		GoodsUnmatched:    unmatched,
		RunLatencySec:     latency,
		SalesPages:        salesPages,
		FilesExported:     exported,
		AssortmentSynced:  assortment,
		NotificationsSent: notifications,
	}
}

// ObserveRun records the outcome of a write-off run
func (r *Registry) ObserveRun(productType, status string, goods, unmatched int, seconds float64) {
	r.Runs.WithLabelValues(productType, status).Inc()
	r.GoodsReconciled.Add(float64(goods))
	r.GoodsUnmatched.Set(float64(unmatched))
	r.RunLatencySec.Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
