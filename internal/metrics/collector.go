package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/contactlqr/internal/dynamo"
)

// Collector counts synthesis requests by mechanism and outcome and
// histograms their duration.
type Collector struct {
	syntheses *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewCollector() *Collector {
	return &Collector{
		syntheses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactlqr_syntheses_total",
				Help: "Contact LQR syntheses by mechanism and outcome.",
			},
			[]string{"mechanism", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contactlqr_synthesis_duration_seconds",
				Help:    "Time spent synthesizing a contact LQR gain.",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"mechanism"},
		),
	}
}

// Register adds the collector's metrics to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.syntheses, c.duration} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// ObserveSynthesis records one synthesis.
func (c *Collector) ObserveSynthesis(mechanism string, seconds float64, err error) {
	c.syntheses.WithLabelValues(mechanism, Outcome(err)).Inc()
	c.duration.WithLabelValues(mechanism).Observe(seconds)
}

// Outcome classifies a synthesis error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dynamo.ErrPrecondition):
		return "precondition"
	case errors.Is(err, dynamo.ErrDimension):
		return "dimension"
	case errors.Is(err, dynamo.ErrSingularMatrix):
		return "singular"
	case errors.Is(err, dynamo.ErrNoStabilizingSolution):
		return "no_solution"
	default:
		return "error"
	}
}
