// Package console is the operator surface of the controller: the A/B
// buttons that start workflows and the matrix display that shows results.
// On a terminal the buttons are single key presses; otherwise commands are
// read line by line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
	"github.com/dmitrijs2005/facegate/internal/services"
)

// Gate is the workflow surface the console drives.
type Gate interface {
	Enroll(ctx context.Context, id models.IdentityNumber) (services.EnrollResult, error)
	Authenticate(ctx context.Context) (services.AuthResult, error)
}

// Buttons maps button A and button B to the identity each one enrolls.
type Buttons struct {
	A models.IdentityNumber
	B models.IdentityNumber
}

type Console struct {
	gate    Gate
	buttons Buttons
	in      io.Reader
	out     io.Writer
	logger  logging.Logger

	inputClosed atomic.Bool
}

func New(gate Gate, buttons Buttons, in io.Reader, out io.Writer, logger logging.Logger) *Console {
	return &Console{
		gate:    gate,
		buttons: buttons,
		in:      in,
		out:     crlfWriter{out},
		logger:  logger.With("module", "console"),
	}
}

// InputClosed reports whether the last run ended because its input did,
// rather than on a quit command or cancellation.
func (c *Console) InputClosed() bool {
	return c.inputClosed.Load()
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) enroll(ctx context.Context, id models.IdentityNumber) {
	res, err := c.gate.Enroll(ctx, id)
	if err != nil {
		c.report(ctx, "enroll", err)
		return
	}
	c.println(fmt.Sprintf("enrolled as %d", res.Identity))
}

func (c *Console) authenticate(ctx context.Context) {
	res, err := c.gate.Authenticate(ctx)
	switch {
	case err != nil:
		c.report(ctx, "auth", err)
	case !res.Passed:
		c.println("auth: fail")
	case !res.Bound:
		c.println("auth: pass (unbound)")
	default:
		c.println(fmt.Sprintf("auth: pass, identity %d", res.Identity))
	}
}

func (c *Console) report(ctx context.Context, op string, err error) {
	switch {
	case errors.Is(err, common.ErrBusy):
		c.println(op + ": busy, try again")
	case errors.Is(err, common.ErrAcquireTimeout):
		c.println(op + ": no feature received")
	case errors.Is(err, context.Canceled):
		c.println(op + ": cancelled")
	default:
		c.logger.Error(ctx, "workflow failed", "op", op, "error", err)
		c.println(op+":", "error:", err)
	}
}

// RunLines is a read-eval-print loop over c.in. Commands:
//
//	enroll <n>   enroll identity n
//	a | b        press button A or B
//	auth | ab    press both buttons
//	help         list commands
//	exit | quit  leave
//
// It returns on EOF, exit or ctx cancellation.
func (c *Console) RunLines(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(c.out, "facegate> ")

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				c.inputClosed.Store(true)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			line = l
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			c.println("Available commands: enroll <n>, a, b, auth (ab), exit")

		case "enroll":
			if len(parts) != 2 {
				c.println("usage: enroll <n>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n <= 0 {
				c.println("identity must be a positive number:", parts[1])
				continue
			}
			c.enroll(ctx, models.IdentityNumber(n))

		case "a":
			c.enroll(ctx, c.buttons.A)

		case "b":
			c.enroll(ctx, c.buttons.B)

		case "auth", "ab":
			c.authenticate(ctx)

		case "exit", "quit":
			c.println("Bye!")
			return nil

		default:
			c.println("Unknown command:", parts[0])
		}
	}
}
