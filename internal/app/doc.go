// Package app is the composition root of oneearth.
//
// # Overview
//
// Run wires configuration, logging, the theme store, the metrics client,
// the poll cache and the dashboard store together and then blocks in the
// terminal UI until the user quits or the context is cancelled.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> logging.New()        File logger (no-op without log_file)
//	       ├─────> NewThemeStore()      prefs file + terminal signal, InitMode
//	       ├─────> NewClient()          Metrics API client
//	       ├─────> checkHealth()        One liveness probe, logged only
//	       ├─────> poll.New()           Retrying per-key cache
//	       ├─────> StartPoller()        Subscribe "latest" and "series:{days}"
//	       └─────> ui.Run()             Start TUI (blocks)
//
//	Poll cache (one loop per key):
//	┌─────────────────────────────────────────┐
//	│ every poll_interval, or on Refetch      │
//	│  ├─> FetchLatest() / FetchSeries()      │
//	│  ├─> retries with backoff (1s, 2s, 4s)  │
//	│  └─> store.UpdateLatest/UpdateSeries()  │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Only setup failures are returned from Run: an unusable log file or an
// invalid API origin. Fetch failures never stop the dashboard; they surface
// as the error state of a query while polling continues.
//
// # Snapshot
//
// FetchReport performs a single concurrent fetch of every endpoint for the
// snapshot command. Unlike the dashboard it does not retry.
package app
