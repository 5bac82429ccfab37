// Package config handles rampart's HCL configuration file.
//
// # Example
//
//	listen   = ":8080"
//	language = "en"
//
//	log {
//	  level = "debug"
//	  json  = false
//	}
//
//	provider {
//	  backend       = "kv"
//	  system_source = "host"
//	  latency       = "250ms"
//	}
//
//	fault "users" "create" {
//	  message = "directory is read-only"
//	}
//
//	metrics {
//	  enabled = true
//	  path    = "/metrics"
//	}
//
//	store {
//	  trace_diffs = true
//	}
//
//	login_limit {
//	  enabled  = true
//	  attempts = 5
//	  window   = "1m"
//	}
//
// Expressions may read the environment through the env object, for example
// listen = env.RAMPART_LISTEN. Referencing an unset variable is an error.
package config
