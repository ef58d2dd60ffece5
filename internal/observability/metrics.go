package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argus",
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through the detection engine",
	}, []string{"mode"})

	FacesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argus",
		Name:      "faces_detected_total",
		Help:      "Total number of faces the vision model reported",
	}, []string{"mode"})

	ComparisonsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argus",
		Name:      "comparisons_total",
		Help:      "Face-to-candidate comparisons by candidate kind and outcome",
	}, []string{"kind", "outcome"})

	DetectionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argus",
		Name:      "detections_recorded_total",
		Help:      "Detection records persisted",
	}, []string{"mode", "kind"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argus",
		Name:      "upstream_errors_total",
		Help:      "Vision model call failures by error kind",
	}, []string{"kind"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "argus",
		Name:      "run_duration_seconds",
		Help:      "Duration of detection run stages",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"stage"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "argus",
		Name:      "queue_depth",
		Help:      "Number of pending frame tasks in queue",
	})

	ActiveCameras = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "argus",
		Name:      "active_cameras",
		Help:      "Number of cameras currently being sampled",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "argus",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "argus",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
