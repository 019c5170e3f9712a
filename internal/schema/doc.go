// Package schema validates the untrusted JSON returned by the metrics API.
//
// Two shapes are accepted:
//
//	GET /api/metrics/co2       {"timestamp": "2024-01-01T00:00:00Z", "value": 421.3}
//	GET /api/series/co2?days=N [{"T": "2024-01-01T00:00:00Z", "V": 421.3}, ...]
//
// Validation is total: any input produces either a typed value or a
// *SchemaError naming the offending field. Inputs are never modified.
package schema
