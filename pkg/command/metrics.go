package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Metrics counts handled commands by name and outcome.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the command metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazya2l",
			Name:      "commands_total",
			Help:      "Commands handled, by command and result code.",
		}, []string{"command", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lazya2l",
			Name:      "command_duration_seconds",
			Help:      "Time spent handling a command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(command string, code calib.Code, elapsed time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "ok"
	}
	m.requests.WithLabelValues(command, string(code)).Inc()
	m.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}
