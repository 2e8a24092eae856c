package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/facegate/internal/client/cli"
	"github.com/dmitrijs2005/facegate/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := cli.NewApp(cfg, os.Stdout).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
