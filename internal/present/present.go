// Package present maps validated readings to what the dashboard draws.
// Every function is pure.
package present

import (
	"fmt"
	"math"
	"time"

	"github.com/five82/oneearth/internal/schema"
)

// TimestampLayout renders readout times, always in UTC.
const TimestampLayout = "2006-01-02 15:04 UTC"

// Unit is appended to formatted values.
const Unit = "ppm"

// Attribution credits the data source.
const Attribution = "Source: NOAA GML - Public Domain"

// Point is one chart sample. X is the position in the series.
type Point struct {
	X int
	T time.Time
	Y float64
}

// Readout is a formatted latest reading.
type Readout struct {
	Updated string `json:"updated" yaml:"updated"`
	Value   string `json:"value" yaml:"value"`
}

// Points returns the chart samples of s in the same order.
func Points(s schema.Series) []Point {
	if len(s) == 0 {
		return nil
	}
	out := make([]Point, len(s))
	for i, p := range s {
		out[i] = Point{X: i, T: p.Timestamp, Y: p.Value}
	}
	return out
}

// Values returns the series values in order.
func Values(s schema.Series) []float64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Range returns the smallest and largest value of s. ok is false for an
// empty series.
func Range(s schema.Series) (lo, hi float64, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	lo, hi = s[0].Value, s[0].Value
	for _, p := range s[1:] {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	return lo, hi, true
}

// FormatTimestamp renders t in UTC as "2006-01-02 15:04 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatValue renders v with one decimal and the unit. Ties round away
// from zero, so 421.25 reads 421.3.
func FormatValue(v float64) string {
	return fmt.Sprintf("%.1f %s", math.Round(v*10)/10, Unit)
}

// ReadoutOf formats the latest reading.
func ReadoutOf(m schema.LatestMetric) Readout {
	return Readout{
		Updated: FormatTimestamp(m.Timestamp),
		Value:   FormatValue(m.Value),
	}
}
