package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfp_brief_documents_processed_total",
			Help: "Total documents summarized",
		},
		[]string{"source_type"},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rfp_brief_extraction_duration_seconds",
			Help:    "Time spent running the extraction rules on one document",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
	)

	FitScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rfp_brief_fit_score",
			Help:    "Distribution of heuristic fit scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	SectionItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfp_brief_section_items",
			Help:    "Items captured per requirements section",
			Buckets: []float64{0, 1, 2, 4, 8, 12},
		},
		[]string{"section"},
	)

	EmptyFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfp_brief_empty_fields_total",
			Help: "Scalar facts that no rule matched",
		},
		[]string{"field"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rfp_brief_cache_hits_total",
			Help: "Summary cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rfp_brief_cache_misses_total",
			Help: "Summary cache misses",
		},
	)

	RequestsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfp_brief_requests_rejected_total",
			Help: "Requests rejected before extraction",
		},
		[]string{"reason"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			DocumentsProcessed,
			ExtractionDuration,
			FitScore,
			SectionItems,
			EmptyFields,
			CacheHits,
			CacheMisses,
			RequestsRejected,
		)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
