package monitoring

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Collector bundles the driver's Prometheus metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	PollTotal         *prometheus.CounterVec
	PollDuration      prometheus.Histogram
	ProvisionSuccess  prometheus.Gauge
	AnchorsConfigured prometheus.Gauge
}

// NewCollector registers the driver metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	polls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uwb_poll_total",
		Help: "Positioning polls, labeled by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uwb_poll_duration_seconds",
		Help:    "Time spent on one position plus orientation round trip.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}))
	if err != nil {
		return nil, err
	}
	provisioned, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uwb_provision_success",
		Help: "1 if the last anchor provisioning succeeded, 0 otherwise.",
	}))
	if err != nil {
		return nil, err
	}
	anchors, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uwb_anchors_configured",
		Help: "Number of anchors pushed to the tag by the last provisioning.",
	}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		PollTotal:         polls,
		PollDuration:      durations,
		ProvisionSuccess:  provisioned,
		AnchorsConfigured: anchors,
	}, nil
}

// register registers c, reusing an already registered collector of the same
// description.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObservePoll records one poll outcome and its duration.
func (c *Collector) ObservePoll(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.PollTotal.WithLabelValues(outcome).Inc()
	c.PollDuration.Observe(d.Seconds())
}

// ObserveProvision records the result of pushing anchors to the tag.
func (c *Collector) ObserveProvision(ok bool, anchors int) {
	if c == nil {
		return
	}
	if ok {
		c.ProvisionSuccess.Set(1)
	} else {
		c.ProvisionSuccess.Set(0)
	}
	c.AnchorsConfigured.Set(float64(anchors))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
