package service

import "github.com/prometheus/client_golang/prometheus"

// Upload outcomes recorded by Metrics.
const (
	outcomeStored          = "stored"
	outcomeEmpty           = "empty"
	outcomeTooLarge        = "too_large"
	outcomeInvalidFilename = "invalid_filename"
	outcomeFailed          = "failed"
)

// Metrics holds upload counters.
type Metrics struct {
	uploads       *prometheus.CounterVec
	uploadedBytes prometheus.Counter
}

// NewMetrics creates upload metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "file_uploads_total",
				Help: "Total number of upload attempts by outcome.",
			},
			[]string{"outcome"},
		),
		uploadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "file_uploaded_bytes_total",
				Help: "Total number of bytes persisted by successful uploads.",
			},
		),
	}
	if err := reg.Register(m.uploads); err != nil {
		return nil, err
	}
	if err := reg.Register(m.uploadedBytes); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(outcome string, bytes int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome == outcomeStored {
		m.uploadedBytes.Add(float64(bytes))
	}
}
