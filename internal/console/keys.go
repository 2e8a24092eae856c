package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	isTerminal = term.IsTerminal
	makeRaw    = term.MakeRaw
	restore    = term.Restore
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

type fder interface {
	Fd() uintptr
}

// Run uses button mode when c.in is a terminal and lineMode is off, and
// the line loop otherwise.
func (c *Console) Run(ctx context.Context, lineMode bool) error {
	f, ok := c.in.(fder)
	if lineMode || !ok || !isTerminal(int(f.Fd())) {
		return c.RunLines(ctx)
	}

	fd := int(f.Fd())
	state, err := makeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal raw mode: %w", err)
	}
	rawMode.Store(true)
	defer func() {
		rawMode.Store(false)
		restore(fd, state)
	}()

	return c.RunKeys(ctx)
}

// RunKeys treats every byte of c.in as a button press: a and b enroll the
// identities bound to buttons A and B, c or space presses both and
// authenticates, q or Ctrl-C quits. While a workflow runs, q or Ctrl-C
// cancels it and every other key is dropped.
func (c *Console) RunKeys(ctx context.Context) error {
	keys := make(chan byte, 16)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			if _, err := c.in.Read(buf); err != nil {
				return
			}
			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.println(fmt.Sprintf("[a] enroll %d  [b] enroll %d  [c/space] authenticate  [q] quit", c.buttons.A, c.buttons.B))

	for {
		var key byte
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				c.inputClosed.Store(true)
				return nil
			}
			key = k
		}

		var run func(context.Context)
		switch key {
		case 'a', 'A':
			run = func(ctx context.Context) { c.enroll(ctx, c.buttons.A) }
		case 'b', 'B':
			run = func(ctx context.Context) { c.enroll(ctx, c.buttons.B) }
		case 'c', 'C', ' ':
			run = c.authenticate
		case 'q', 'Q', keyCtrlC, keyCtrlD:
			c.println("Bye!")
			return nil
		default:
			continue
		}

		if quit := c.press(ctx, keys, run); quit {
			return nil
		}
	}
}

// press runs one workflow while watching for a quit key. It reports
// whether the console should exit.
func (c *Console) press(ctx context.Context, keys <-chan byte, run func(context.Context)) bool {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		run(wctx)
	}()

	for {
		select {
		case <-done:
			return false
		case k, ok := <-keys:
			if !ok {
				c.inputClosed.Store(true)
				cancel()
				<-done
				return true
			}
			if k == 'q' || k == 'Q' || k == keyCtrlC {
				cancel()
				<-done
			}
		}
	}
}

// rawMode is set while the terminal is in raw mode. The terminal is
// process-wide, so is the flag.
var rawMode atomic.Bool

// Writer wraps w so that it stays readable while the console holds the
// terminal in raw mode. Use it for anything else written to the terminal.
func Writer(w io.Writer) io.Writer {
	return crlfWriter{w}
}

// crlfWriter translates \n to \r\n while the terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if !rawMode.Load() {
		return c.w.Write(p)
	}
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
