// Package app wires the controller together: configuration, credential
// store, camera link, console and the optional control API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/facegate/internal/backup"
	"github.com/dmitrijs2005/facegate/internal/config"
	"github.com/dmitrijs2005/facegate/internal/console"
	gs "github.com/dmitrijs2005/facegate/internal/grpc"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
	"github.com/dmitrijs2005/facegate/internal/repositories/credentials"
	"github.com/dmitrijs2005/facegate/internal/services"
	"github.com/dmitrijs2005/facegate/internal/transport"
)

type App struct {
	config *config.Config
	logger logging.Logger
	stdin  io.Reader
	stdout io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.New(console.Writer(os.Stderr), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	return &App{config: cfg, logger: logger, stdin: os.Stdin, stdout: os.Stdout}, nil
}

// openTransport connects to the camera module, over TCP when a bridge
// address is configured and over the serial device otherwise.
func (app *App) openTransport(ctx context.Context) (*transport.Line, error) {
	var (
		rw  io.ReadWriteCloser
		err error
	)
	if app.config.TransportAddr != "" {
		rw, err = transport.Dial(ctx, app.config.TransportAddr)
	} else {
		rw, err = transport.OpenSerial(app.config.SerialDevice, app.config.BaudRate)
	}
	if err != nil {
		return nil, err
	}

	opts := transport.Options{
		FeatureTag:   app.config.FeatureTag,
		PassLiteral:  app.config.PassLiteral,
		FailLiteral:  app.config.FailLiteral,
		PollInterval: app.config.PollInterval,
	}
	return transport.NewLine(rw, opts, app.logger), nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc, gate gs.Gate) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, gate, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until the console exits or a signal arrives. With -backup
// set it uploads one snapshot instead and returns.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting facegate...", "store", app.config.StoreBackend, "data_dir", app.config.DataDir)

	repo, err := credentials.Open(ctx, app.config, app.logger)
	if err != nil {
		return fmt.Errorf("store init error: %w", err)
	}
	defer repo.Close()

	if app.config.Backup {
		prefix, err := backup.NewUploader(app.config, app.logger).Upload(ctx, repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "backup written to s3://%s/%s\n", app.config.S3Bucket, prefix)
		return nil
	}

	line, err := app.openTransport(ctx)
	if err != nil {
		return fmt.Errorf("transport init error: %w", err)
	}
	defer line.Close()

	display := console.NewTerminalDisplay(app.stdout, app.config.DisplayDuration)
	gate := services.NewGateService(repo, line, display, app.config, app.logger)

	return app.serve(ctx, gate)
}

func (app *App) serve(ctx context.Context, gate *services.GateService) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var wg sync.WaitGroup

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc, gate)
		}()
	}

	buttons := console.Buttons{
		A: models.IdentityNumber(app.config.ButtonAIdentity),
		B: models.IdentityNumber(app.config.ButtonBIdentity),
	}
	c := console.New(gate, buttons, app.stdin, app.stdout, app.logger)

	err := c.Run(ctx, app.config.LineMode)
	if err == nil && c.InputClosed() && app.config.GRPCAddr != "" {
		app.logger.Info(ctx, "console input closed, serving control API only")
		<-ctx.Done()
	}
	cancelFunc()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	app.logger.Info(ctx, "facegate stopped")
	return nil
}
