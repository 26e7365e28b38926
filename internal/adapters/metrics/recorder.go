// Package metrics records script invocation outcomes with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/storytext/internal/domain"
)

// Recorder implements ports.OutcomeRecorder.
type Recorder struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered, which is useful in tests.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storytext",
				Name:      "script_invocations_total",
				Help:      "Script invocations by script and result.",
			},
			[]string{"script", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storytext",
				Name:      "script_duration_seconds",
				Help:      "Wall-clock duration of script invocations.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"script"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.invocations, r.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Record counts one invocation.
func (r *Recorder) Record(script string, result domain.Result, elapsed time.Duration) {
	r.invocations.WithLabelValues(script, string(result)).Inc()
	r.duration.WithLabelValues(script).Observe(elapsed.Seconds())
}

// Invocations exposes the counter vector for inspection.
func (r *Recorder) Invocations() *prometheus.CounterVec {
	return r.invocations
}
