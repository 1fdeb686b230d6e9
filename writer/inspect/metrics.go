package inspect

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse results as reported by bmff_parse_total.
const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultTooLarge = "too_large"
)

type metrics struct {
	registry *prometheus.Registry
	parses   *prometheus.CounterVec
	seconds  prometheus.Histogram
	boxes    prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bmff_parse_total",
			Help: "Decoded request bodies by result",
		}, []string{"result"}),
		seconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bmff_parse_seconds",
			Help:    "Time spent decoding a request body",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		boxes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmff_boxes_decoded",
			Help: "Boxes decoded across all requests",
		}),
	}
	m.registry.MustRegister(m.parses, m.seconds, m.boxes)
	return m
}

func (m *metrics) observe(result string, took time.Duration, boxes int) {
	m.parses.WithLabelValues(result).Inc()
	if result == resultOK {
		m.seconds.Observe(took.Seconds())
		m.boxes.Add(float64(boxes))
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
