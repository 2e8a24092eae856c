package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/facegate/internal/flagx"
)

// parseFlags populates Config fields from command-line flags and collects
// the remaining arguments into Args.
//
// Supported flags (short forms):
//
//	-a string     address and port of the controller
//	-k string     secret key used to mint tokens
//	-o string     operator name put into minted tokens
//	-token string pre-issued access token
//	-w int        request timeout (in seconds)
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access the controller")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.Operator, "o", cfg.Operator, "operator name")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "access token")
	requestTimeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	// declared so that their values are not taken for commands
	fs.String("c", "", "config file")
	fs.String("config", "", "config file")

	args := os.Args[1:]
	if err := fs.Parse(flagx.FilterFor(fs, args)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})

	cfg.Args = flagx.Positional(fs, args)
}
