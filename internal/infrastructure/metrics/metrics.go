package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Invoice metrics
	InvoicesCreated  prometheus.Counter
	InvoicesArchived prometheus.Counter
	InvoicesDeleted  prometheus.Counter

	// Installment metrics
	InstallmentsAdded   prometheus.Counter
	InstallmentsRemoved prometheus.Counter

	// Payment metrics
	PaymentsRecorded prometheus.Counter
	PaymentsRemoved  prometheus.Counter
	PaymentAmount    prometheus.Histogram
	PaymentErrors    *prometheus.CounterVec

	// Concurrency metrics
	VersionConflicts prometheus.Counter

	// Cache metrics
	SummaryCacheHits   prometheus.Counter
	SummaryCacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		InvoicesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_invoices_created_total",
			Help: "Total number of invoices created",
		}),
		InvoicesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_invoices_archived_total",
			Help: "Total number of invoices archived",
		}),
		InvoicesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_invoices_deleted_total",
			Help: "Total number of invoices deleted",
		}),

		InstallmentsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_installments_added_total",
			Help: "Total number of installments added",
		}),
		InstallmentsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_installments_removed_total",
			Help: "Total number of installments removed",
		}),

		PaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_payments_recorded_total",
			Help: "Total number of payments recorded",
		}),
		PaymentsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_payments_removed_total",
			Help: "Total number of payments removed",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goinvoice_payment_amount",
			Help:    "Recorded payment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goinvoice_payment_errors_total",
				Help: "Total number of payment errors by type",
			},
			[]string{"error_type"},
		),

		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_version_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts on save",
		}),

		SummaryCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_summary_cache_hits_total",
			Help: "Total number of invoice summary cache hits",
		}),
		SummaryCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goinvoice_summary_cache_misses_total",
			Help: "Total number of invoice summary cache misses",
		}),
	}
}
