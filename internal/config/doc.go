// Package config loads crownwatch's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/crownwatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	base_url = "https://deltacrown.gg"
//	session_cookie = "..."          # Django sessionid; enables notifications
//	tournament_slug = "spring-cup"  # enables the tournament sync
//	log_file = "~/.local/state/crownwatch/crownwatch.log"
//	log_level = "info"
//	metrics_addr = ""               # e.g. "127.0.0.1:9464"
//	suspend_when_hidden = true
//	allow_stale = false
//
//	[notifications]
//	enabled = true
//	poll_interval = "30s"
//	push_grace = "2s"
//	push_backoff = "3s"
//	max_retries = 3
//
//	[tournament]
//	enabled = true
//	poll_interval = "10s"
//
// Durations use Go syntax. An unparseable or non-positive duration is an
// error; a missing one keeps its default. Tilde expansion is applied to the
// config path and log_file.
//
// Missing config files are NOT an error. Without a session cookie the
// notification sync is skipped, and without a tournament slug the tournament
// sync is skipped.
package config
