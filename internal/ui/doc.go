// Package ui provides the terminal dashboard for oneearth.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model never fetches anything itself: a
// poll cache in the app package keeps a state.Store current, and Model
// copies a snapshot out of the store on every tick (one second by default).
// Rendering is derived from that snapshot and the theme store only.
//
// # Layout
//
//   - Header: logo, connection status, the /api/hello banner and the active theme
//   - Tile: the latest CO2 reading, a sparkline of the series and its range
//   - Footer: API origin, health URL and public site URL
//   - Help bar: short key help from bubbles/help
//
// The tile shows "Loading..." with a spinner until both queries have data,
// and "Data unavailable, retrying..." while either query is in its error
// state. Polling keeps running in the background in both cases.
//
// # Theme
//
// Two palettes exist, Light and Dark, picked by theme.Store.IsDark. Keys 1,
// 2 and 3 select light, dark and system mode and T cycles through them.
// Run forwards system appearance changes into the program so system mode
// follows the terminal background while it runs.
//
// # Keyboard
//
//	r        refresh now
//	T        cycle theme mode
//	1/2/3    light/dark/system
//	?        toggle help
//	q        quit
package ui
