package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records answer request metrics on its own registry.
type Collector struct {
	registry        *prometheus.Registry
	answerRequests  *prometheus.CounterVec
	answerDurations *prometheus.HistogramVec
}

// NewCollector creates a Collector with answer metrics and the Go/process collectors registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	answerRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medquery",
			Name:      "answer_requests_total",
			Help:      "Answer requests by outcome",
		},
		[]string{"outcome"},
	)

	answerDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medquery",
			Name:      "answer_request_duration_seconds",
			Help:      "Time spent obtaining an answer, including the provider call",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		answerRequests,
		answerDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:        registry,
		answerRequests:  answerRequests,
		answerDurations: answerDurations,
	}
}

// ObserveAnswer records one finished answer request.
func (c *Collector) ObserveAnswer(outcome string, elapsed time.Duration) {
	c.answerRequests.WithLabelValues(outcome).Inc()
	c.answerDurations.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
