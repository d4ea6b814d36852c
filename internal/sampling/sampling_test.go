package sampling

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// stubSource always picks the widest window and returns a fixed uniform draw.
type stubSource struct {
	u float64
}

func (s stubSource) IntN(n int) int   { return n - 1 }
func (s stubSource) Float64() float64 { return s.u }

// narrowSource always picks R = 1.
type narrowSource struct{}

func (narrowSource) IntN(int) int     { return 0 }
func (narrowSource) Float64() float64 { return 0.5 }

func getMetricValue(m prometheus.Metric) float64 {
	var metric dto.Metric
	_ = m.Write(&metric)
	if metric.Counter != nil {
		return *metric.Counter.Value
	}
	if metric.Gauge != nil {
		return *metric.Gauge.Value
	}
	return 0
}
