// Package config loads dashboard settings.
//
// # Sources
//
// Settings are resolved with viper, highest precedence first:
//
//  1. Command-line flags registered by RegisterFlags, when set
//  2. ONEEARTH_* environment variables (ONEEARTH_API_ORIGIN, ONEEARTH_RETRIES, ...)
//  3. The TOML config file, ~/.config/oneearth/config.toml by default
//  4. Built-in defaults
//
// A missing config file is not an error; an unparsable one is.
//
// # Keys
//
//	api_origin      = "http://127.0.0.1:8081"
//	poll_interval   = "60s"
//	series_days     = 30
//	retries         = 3
//	request_timeout = "10s"
//	prefs_path      = "~/.config/oneearth/prefs.toml"
//	log_file        = ""
//	site_url        = ""
//	debug           = false
//
// Tilde expansion is applied to prefs_path and log_file.
package config
