// Package theme owns the light/dark/system appearance preference.
//
// A Store resolves the effective appearance from the applied mode and, in
// system mode, from a SystemSignal. Every mode change is mirrored into a
// Storage so it survives restarts. All failures of the storage or the
// signal are logged and degrade to system mode with a light appearance.
package theme
