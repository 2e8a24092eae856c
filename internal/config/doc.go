// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations may be strings like "300ms" or integer nanoseconds:
//
//	{
//	  "data_dir": "/var/lib/facegate",
//	  "store_backend": "file",
//	  "serial_device": "/dev/ttyUSB0",
//	  "baud_rate": 9600,
//	  "poll_interval": "300ms",
//	  "acquire_timeout": "30s",
//	  "grpc_addr": ":50061"
//	}
//
// Environment variables are not read.
package config
