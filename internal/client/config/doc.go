// Package config loads runtime configuration for the session client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the identity backend
//	-t int      backend request timeout (seconds)
//	-d string   path of the SQLite session database
//	-l string   log level
//
// Environment
//
//	ADHERETRACK_BACKEND_URL, ADHERETRACK_REQUEST_TIMEOUT ("5s"),
//	ADHERETRACK_DB_PATH, ADHERETRACK_LOG_LEVEL
//
// # JSON schema
//
//	{
//	  "backend_url": "http://localhost:4000",
//	  "request_timeout": "10s",
//	  "database_path": "session.db",
//	  "log_level": "info"
//	}
package config
