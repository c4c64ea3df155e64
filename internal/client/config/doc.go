// Package config loads runtime configuration for the TaskKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the task backend
//	-t int      request timeout (seconds)
//	-d string   local data directory
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be either
// strings like "30s" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "base_url": "https://tasks.example.com",
//	  "request_timeout": "30s",
//	  "data_dir": ".taskkeeper",
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
