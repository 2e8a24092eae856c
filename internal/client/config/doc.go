// Package config loads runtime configuration for facegatectl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Arguments that are not flags form the command, e.g.
//
//	facegatectl -a gate.local:50051 enroll 2
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "secret_key": "secretKey",
//	  "operator": "alice",
//	  "token_validity": "10m",
//	  "request_timeout": "1m"
//	}
package config
