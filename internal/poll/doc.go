// Package poll keeps keyed queries fresh.
//
// A Cache runs one refresh loop per subscribed key. Each cycle fetches,
// retries with exponential backoff, and publishes loading, success, or error
// states to every Listener of the key. Concurrent cycles for one key share a
// single in-flight fetch, and results from superseded or unsubscribed cycles
// are dropped.
package poll
