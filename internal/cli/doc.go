// Package cli defines the oneearth command tree.
//
// The root command runs the dashboard. Subcommands:
//
//	snapshot   fetch once and print text, JSON or YAML
//	theme      show or set the persisted theme mode
//	version    print build information
//
// Every command accepts the settings flags from the config package and
// --config to point at a different config file.
package cli
