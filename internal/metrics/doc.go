// Package metrics provides an HTTP client for the One Earth metrics API.
//
// # Overview
//
// The client fetches the latest CO2 reading and the CO2 time series, runs
// every response through package schema, and reports failures as typed
// errors. It performs no retries; retry policy belongs to package poll.
//
// # API Endpoints
//
//   - GET /api/metrics/co2: latest reading {timestamp, value}
//   - GET /api/series/co2?days=N: series [{T, V}, ...]
//   - GET /api/hello: status banner {message}
//   - GET /health: liveness check
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json header
//   - Set a User-Agent and a fresh X-Request-ID (uuid) header
//   - Treat any non-2xx status as a *NetworkError
//
// # Error Handling
//
//   - *NetworkError: transport failure, non-2xx status, or a body that is not JSON
//   - *ValidationError: a 2xx JSON body that failed schema validation; wraps
//     the *schema.SchemaError naming the offending field
//
// Use IsNetwork and IsValidation, or errors.As, to classify errors.
//
// # Usage Example
//
//	client, err := metrics.NewClient("http://127.0.0.1:8081")
//	if err != nil {
//		return err
//	}
//	latest, err := client.FetchLatest(ctx)
//	if metrics.IsValidation(err) {
//		// the API answered, but with a payload we refuse to render
//	}
package metrics
