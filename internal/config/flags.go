package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/facegate/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   data directory
//	-s string   store backend: file, sqlite, postgres
//	-q string   sqlite database file
//	-D string   postgres DSN
//	-p string   serial device
//	-b int      serial baud rate
//	-t string   serial-over-TCP bridge address (overrides -p)
//	-i int      poll interval, milliseconds
//	-w int      acquisition timeout, seconds (0 = wait until cancelled)
//	-g string   control API bind address (empty disables it)
//	-k string   control API secret key
//	-l string   log level
//	-lines      line-oriented console instead of single-key buttons
//	-backup     upload a snapshot of the logs to S3 and exit
//
// Duration flags are given as integers and converted afterwards.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "store backend (file, sqlite, postgres)")
	fs.StringVar(&cfg.SQLitePath, "q", cfg.SQLitePath, "sqlite database file")
	fs.StringVar(&cfg.DatabaseDSN, "D", cfg.DatabaseDSN, "postgres DSN")
	fs.StringVar(&cfg.SerialDevice, "p", cfg.SerialDevice, "serial device")
	fs.IntVar(&cfg.BaudRate, "b", cfg.BaudRate, "serial baud rate")
	fs.StringVar(&cfg.TransportAddr, "t", cfg.TransportAddr, "serial-over-TCP bridge address")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Milliseconds()), "poll interval (in milliseconds)")
	acquireTimeout := fs.Int("w", int(cfg.AcquireTimeout.Seconds()), "acquisition timeout (in seconds)")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "control API address")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "control API secret key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.LineMode, "lines", cfg.LineMode, "line-oriented console")
	fs.BoolVar(&cfg.Backup, "backup", cfg.Backup, "upload a snapshot to S3 and exit")

	if err := fs.Parse(flagx.FilterFor(fs, os.Args[1:])); err != nil {
		panic(err)
	}

	// Only explicitly given duration flags override, so sub-unit values
	// from JSON survive the integer round trip.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.PollInterval = time.Duration(*pollInterval) * time.Millisecond
		case "w":
			cfg.AcquireTimeout = time.Duration(*acquireTimeout) * time.Second
		}
	})
}
