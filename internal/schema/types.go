package schema

import "time"

// MetricPoint is a single timestamped reading.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Value     float64   `json:"value" yaml:"value"`
}

// LatestMetric is the most recent reading reported by /api/metrics/co2.
type LatestMetric MetricPoint

// Point returns the reading as a MetricPoint.
func (l LatestMetric) Point() MetricPoint {
	return MetricPoint(l)
}

// Series holds readings in the order the server delivered them.
type Series []MetricPoint

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	dup := make(Series, len(s))
	copy(dup, s)
	return dup
}
