package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parsing pipeline metrics. Outcome labels: parsed, manual, failed.
var (
	ReceiptParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reisekosten",
		Subsystem: "parsing",
		Name:      "receipts_total",
		Help:      "Receipt parsing runs by outcome.",
	}, []string{"outcome"})

	ParsingConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reisekosten",
		Subsystem: "parsing",
		Name:      "confidence",
		Help:      "Confidence score distribution of parsing runs.",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reisekosten",
		Subsystem: "parsing",
		Name:      "duration_seconds",
		Help:      "Wall time of a full parsing run including OCR.",
		Buckets:   prometheus.DefBuckets,
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reisekosten",
		Subsystem: "parsing",
		Name:      "queue_depth",
		Help:      "Receipts waiting in the parsing queue.",
	})
)

// HTTP metrics.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reisekosten",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
)
