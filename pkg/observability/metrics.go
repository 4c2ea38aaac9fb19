package observability

import (
	"errors"
	"net/http"

	"github.com/aretw0/weft/pkg/convert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeNoConverter = "no_converter"
	OutcomeError       = "error"
)

// Metrics records conversion counters and durations.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the conversion metrics and registers them with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_conversions_total",
				Help: "Total number of top-level conversions",
			},
			[]string{"direction", "type", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weft_conversion_duration_seconds",
				Help:    "Duration of top-level conversions",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"direction"},
		),
	}

	for _, c := range []prometheus.Collector{m.conversions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveConversion implements convert.Observer.
func (m *Metrics) ObserveConversion(e convert.Event) {
	m.conversions.WithLabelValues(string(e.Direction), e.TypeName, outcome(e.Err)).Inc()
	m.duration.WithLabelValues(string(e.Direction)).Observe(e.Duration.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, convert.ErrNoConverter):
		return OutcomeNoConverter
	default:
		return OutcomeError
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
