package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field names on the wire.
const (
	latestTimestampField = "timestamp"
	latestValueField     = "value"
	pointTimestampField  = "T"
	pointValueField      = "V"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseLatest decodes and validates a latest-metric document.
func ParseLatest(raw []byte) (LatestMetric, error) {
	doc, err := decode(raw)
	if err != nil {
		return LatestMetric{}, err
	}
	return ValidateLatest(doc)
}

// ParseSeries decodes and validates a series document.
func ParseSeries(raw []byte) (Series, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return ValidateSeries(doc)
}

// ValidateLatest validates an already decoded JSON value. Numbers may be
// json.Number or float64.
func ValidateLatest(doc any) (LatestMetric, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return LatestMetric{}, fieldError("", "expected object, got %s", kindOf(doc))
	}
	point, err := validatePoint(obj, "", latestTimestampField, latestValueField)
	if err != nil {
		return LatestMetric{}, err
	}
	return LatestMetric(point), nil
}

// ValidateSeries validates an already decoded JSON array of points.
func ValidateSeries(doc any) (Series, error) {
	items, ok := doc.([]any)
	if !ok {
		return nil, fieldError("", "expected array, got %s", kindOf(doc))
	}
	series := make(Series, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fieldError(prefix, "expected object, got %s", kindOf(item))
		}
		point, err := validatePoint(obj, prefix+".", pointTimestampField, pointValueField)
		if err != nil {
			return nil, err
		}
		series = append(series, point)
	}
	return series, nil
}

// ParseTimestamp parses the date formats the API is allowed to emit.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func validatePoint(obj map[string]any, prefix, tsField, valueField string) (MetricPoint, error) {
	rawTS, ok := obj[tsField]
	if !ok {
		return MetricPoint{}, fieldError(prefix+tsField, "required")
	}
	tsText, ok := rawTS.(string)
	if !ok {
		return MetricPoint{}, fieldError(prefix+tsField, "expected string, got %s", kindOf(rawTS))
	}
	ts, ok := ParseTimestamp(tsText)
	if !ok {
		return MetricPoint{}, fieldError(prefix+tsField, "invalid date string %q", tsText)
	}

	rawValue, ok := obj[valueField]
	if !ok {
		return MetricPoint{}, fieldError(prefix+valueField, "required")
	}
	value, err := finiteNumber(rawValue)
	if err != nil {
		return MetricPoint{}, fieldError(prefix+valueField, "%s", err.Error())
	}
	return MetricPoint{Timestamp: ts, Value: value}, nil
}

func finiteNumber(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("number %s out of range", n.String())
		}
		f = parsed
	case float64:
		f = n
	default:
		return 0, fmt.Errorf("expected number, got %s", kindOf(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number")
	}
	return f, nil
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fieldError("", "invalid JSON: %v", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fieldError("", "invalid JSON: trailing data")
	}
	return doc, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
