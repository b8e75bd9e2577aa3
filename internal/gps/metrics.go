package gps

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts line outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sentences *prometheus.CounterVec
	fixValid  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gllwatch",
			Name:      "sentences_total",
			Help:      "NMEA sentences read, by outcome (decoded, skipped, malformed).",
		}, []string{"result"}),
		fixValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gllwatch",
			Name:      "fix_valid",
			Help:      "1 when the last GLL sentence carried status A.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sentences, m.fixValid)
	}
	return m
}

func (m *Metrics) observe(result string, valid bool) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues(result).Inc()
	if result != resultDecoded {
		return
	}
	if valid {
		m.fixValid.Set(1)
	} else {
		m.fixValid.Set(0)
	}
}
