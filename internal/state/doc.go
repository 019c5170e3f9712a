// Package state holds the query state shared between the poller and the UI.
//
// # Overview
//
// Query[T] is the tagged state of one polled query: loading, error or
// success. Store combines the latest-reading and series queries, plus the
// API status banner, into a Snapshot the UI reads on its own schedule.
//
// # Architecture
//
//	Producer (poll.Cache listeners):     Consumer (UI):
//	┌──────────────────────┐            ┌──────────────────┐
//	│ store.UpdateLatest() │            │                  │
//	│ store.UpdateSeries() │───────────→│ store.Snapshot() │
//	│ store.UpdateHello()  │  (mutex)   │      ↓           │
//	└──────────────────────┘            │  render tile     │
//	                                    └──────────────────┘
//
// # Query Lifecycle
//
//	loading ─┬─> success ──(next tick)──> loading ─┬─> success
//	         └─> error   ──(next tick)──> loading ─┴─> error
//
// Data and FetchedAt from the last success survive later loading and error
// phases, so a refresh never blanks the readout. Err is cleared only by a
// success; Failures counts consecutive error cycles and drives IsOffline.
//
// # Defensive Copying
//
// Snapshot returns deep copies: series slices are cloned and error values
// are re-wrapped, so the UI can never mutate poller-owned state.
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store{} // Ready to use immediately
package state
