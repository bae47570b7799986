// Package config loads the linescope configuration file.
//
// # Overview
//
// Everything that shapes a plot is declared once at startup: which device to
// open, how rows are split into fields, how many samples the window keeps and
// how often the chart refreshes. Nothing here is hot-reloaded.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/linescope/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, keep the defaults
//
// Files ending in .yaml or .yml are decoded as YAML; anything else is TOML.
// Command line flags are applied by the caller on top of the loaded Config.
//
// # TOML Format
//
//	[device]
//	filter = "USB Serial"      # substring of the port description
//	baud = 115200
//	read_timeout_ms = 100
//	# file = "~/captures/run1.csv"  # replay a capture instead of a port
//
//	[plot]
//	labels = ["data_a", "data_b", "data_c", "data_d"]
//	window = 100
//	delimiter = ","
//	interval_ms = 10
//	mode = "line"              # or "bar"
//
//	[[transform.replace]]
//	from = "Quaternion:"
//	to = ""
//
//	[log]
//	file = "~/.local/state/linescope/linescope.log"
//	level = "info"
//
//	[metrics]
//	listen = "127.0.0.1:9464"
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and decode errors (wrapped as "parse config"). Validate
// reports settings that cannot drive a plot, such as duplicate labels or a
// delimiter that would split numbers apart.
package config
