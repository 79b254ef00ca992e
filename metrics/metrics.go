// Package metrics exports resolver measurements to Prometheus.
package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	openadas "github.com/goliatone/go-openadas"
)

// Prometheus implements openadas.Observer.
type Prometheus struct {
	lookups   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	reads     *prometheus.HistogramVec
}

var _ openadas.Observer = (*Prometheus)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openadas",
			Name:      "lookups_total",
			Help:      "Configuration lookups by quantity and outcome.",
		}, []string{"quantity", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openadas",
			Name:      "wavelength_fallbacks_total",
			Help:      "Wavelengths served by the parent element of an isotope, by requesting quantity.",
		}, []string{"quantity"}),
		reads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openadas",
			Name:      "read_duration_seconds",
			Help:      "Time spent in format readers.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"quantity", "result"}),
	}
	for _, c := range []prometheus.Collector{p.lookups, p.fallbacks, p.reads} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "metrics: register collector")
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveLookup(quantity openadas.Quantity, outcome openadas.LookupOutcome) {
	p.lookups.WithLabelValues(string(quantity), string(outcome)).Inc()
}

func (p *Prometheus) ObserveFallback(quantity openadas.Quantity) {
	p.fallbacks.WithLabelValues(string(quantity)).Inc()
}

func (p *Prometheus) ObserveRead(quantity openadas.Quantity, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.reads.WithLabelValues(string(quantity), result).Observe(duration.Seconds())
}

// Lookups returns the lookup counter for one label pair.
func (p *Prometheus) Lookups(quantity, outcome string) prometheus.Counter {
	return p.lookups.WithLabelValues(quantity, outcome)
}

// Fallbacks returns the wavelength fallback counter for quantity.
func (p *Prometheus) Fallbacks(quantity string) prometheus.Counter {
	return p.fallbacks.WithLabelValues(quantity)
}
