// Package cli implements the facegatectl commands:
//
//	token          print a freshly minted access token
//	enroll <n>     run an enrollment for identity n on the controller
//	auth           run an authentication on the controller
//	ping           check that the controller answers
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/facegate/internal/auth"
	"github.com/dmitrijs2005/facegate/internal/client/client"
	"github.com/dmitrijs2005/facegate/internal/client/config"
)

// ErrUsage is returned for unknown commands or bad operands.
var ErrUsage = errors.New("usage: facegatectl [flags] token | enroll <n> | auth | ping")

// Gate is the remote surface the commands drive.
type Gate interface {
	Enroll(ctx context.Context, identity int64) (client.EnrollReply, error)
	Authenticate(ctx context.Context) (client.AuthReply, error)
	Ping(ctx context.Context) error
	Close() error
}

// dial is a test seam for client construction.
var dial = func(addr, token string) (Gate, error) {
	return client.NewGRPCClient(addr, token)
}

type App struct {
	config *config.Config
	out    io.Writer
}

func NewApp(c *config.Config, out io.Writer) *App {
	return &App{config: c, out: out}
}

func (a *App) token() (string, error) {
	if a.config.AccessToken != "" {
		return a.config.AccessToken, nil
	}
	return auth.GenerateToken(a.config.Operator, []byte(a.config.SecretKey), a.config.TokenValidity)
}

// Run executes the command in the config's Args.
func (a *App) Run(ctx context.Context) error {
	args := a.config.Args
	if len(args) == 0 {
		return ErrUsage
	}

	if args[0] == "token" {
		tok, err := a.token()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, tok)
		return nil
	}

	tok, err := a.token()
	if err != nil {
		return err
	}
	gate, err := dial(a.config.ServerEndpointAddr, tok)
	if err != nil {
		return err
	}
	defer gate.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	switch args[0] {
	case "ping":
		if err := gate.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "pong")

	case "enroll":
		if len(args) != 2 {
			return ErrUsage
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: identity must be a positive number", ErrUsage)
		}
		res, err := gate.Enroll(ctx, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "enrolled as %d (%s)\n", res.Identity, res.Digest)

	case "auth":
		res, err := gate.Authenticate(ctx)
		if err != nil {
			return err
		}
		switch {
		case !res.Passed:
			fmt.Fprintln(a.out, "fail")
		case !res.Bound:
			fmt.Fprintln(a.out, "pass (unbound)")
		default:
			fmt.Fprintf(a.out, "pass, identity %d\n", res.Identity)
		}

	default:
		return ErrUsage
	}
	return nil
}
