package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/facegate/internal/app"
	"github.com/dmitrijs2005/facegate/internal/buildinfo"
	"github.com/dmitrijs2005/facegate/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
