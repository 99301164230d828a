// Package config loads runtime configuration for the ledgerdrive client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the ledger gateway
//	-o string   owner public key to log in as on start
//	-s string   session token secret shared with the gateway
//	-d string   path of the local SQLite database
//	-b string   storage backend: memory, lighthouse or s3
//	-k string   Lighthouse API key
//	-g string   retrieval gateway base URL
//	-t int      ledger call timeout (seconds)
//	-u int      storage upload timeout (seconds)
//	-r int      resubmissions of a timed-out ledger call
//	-i int      online status check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "ledger_endpoint_addr": "127.0.0.1:50051",
//	  "storage_backend": "s3",
//	  "s3": {"endpoint": "https://s3.filebase.com", "bucket": "drive"},
//	  "ledger_timeout": "10s"
//	}
package config
