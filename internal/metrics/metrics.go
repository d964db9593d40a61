package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scene service.
type Metrics struct {
	uploadsTotal      prometheus.Counter
	uploadBytes       prometheus.Counter
	sceneOps          *prometheus.CounterVec
	assetStoreLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers all scene service metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		uploadsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scene_uploads_total",
				Help: "Total number of successful model uploads",
			},
		),
		uploadBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scene_upload_bytes_total",
				Help: "Total bytes of model files published to the asset store",
			},
		),
		sceneOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_operations_total",
				Help: "Scene operations by name and outcome",
			},
			[]string{"operation", "status"},
		),
		assetStoreLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asset_store_latency_ms",
				Help:    "Latency of asset store calls in milliseconds",
				Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"operation"},
		),
	}
}

// RecordUpload counts one successful upload of the given size.
func (m *Metrics) RecordUpload(sizeBytes int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.Inc()
	m.uploadBytes.Add(float64(sizeBytes))
}

// RecordSceneOp counts one scene operation outcome ("ok" or "error").
func (m *Metrics) RecordSceneOp(operation, status string) {
	if m == nil {
		return
	}
	m.sceneOps.WithLabelValues(operation, status).Inc()
}

// ObserveAssetStoreLatency records the latency of an asset store call.
func (m *Metrics) ObserveAssetStoreLatency(operation string, milliseconds int64) {
	if m == nil {
		return
	}
	m.assetStoreLatency.WithLabelValues(operation).Observe(float64(milliseconds))
}
