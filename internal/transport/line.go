// Package transport speaks the line protocol of the camera module. Inbound
// lines of the form "<tag>:<payload>" carry feature strings; outbound the
// controller answers with a pass or fail literal after authentication.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/logging"
)

const pendingLines = 64

// Options configures the protocol literals and the poll cadence.
type Options struct {
	FeatureTag   string
	PassLiteral  string
	FailLiteral  string
	PollInterval time.Duration
}

// DefaultOptions returns the literals of the reference camera firmware.
func DefaultOptions() Options {
	return Options{
		FeatureTag:   common.FeatureTag,
		PassLiteral:  common.PassLiteral,
		FailLiteral:  common.FailLiteral,
		PollInterval: 300 * time.Millisecond,
	}
}

// Line runs the protocol over any byte stream. A background goroutine
// splits input into lines and queues at most pendingLines of them, dropping
// the oldest; Poll consumes them without ever blocking.
type Line struct {
	rw     io.ReadWriter
	opts   Options
	logger logging.Logger

	lines chan string
	wmu   sync.Mutex

	errMu   sync.Mutex
	readErr error
}

// NewLine starts reading from rw immediately.
func NewLine(rw io.ReadWriter, opts Options, logger logging.Logger) *Line {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	l := &Line{
		rw:     rw,
		opts:   opts,
		logger: logger.With("module", "transport"),
		lines:  make(chan string, pendingLines),
	}
	go l.readLoop()
	return l
}

func (l *Line) readLoop() {
	defer close(l.lines)

	sc := bufio.NewScanner(l.rw)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		l.push(sc.Text())
	}

	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	l.errMu.Lock()
	l.readErr = err
	l.errMu.Unlock()
}

// push queues a line without blocking, dropping the oldest pending one when
// the queue is full.
func (l *Line) push(line string) {
	for {
		select {
		case l.lines <- line:
			return
		default:
		}
		select {
		case <-l.lines:
		default:
		}
	}
}

// discardPending drops lines that arrived before the caller started
// waiting. It stops at the end-of-input marker and leaves it in place.
func (l *Line) discardPending() int {
	n := 0
	for {
		select {
		case _, open := <-l.lines:
			if !open {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// ParseFeature extracts the payload of a feature line. The line is trimmed
// as a whole; the payload is everything after the first colon, kept byte for
// byte. Anything without the "<tag>:" prefix, or with an empty payload, is
// not a feature.
func ParseFeature(line, tag string) (string, bool) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(line), tag+":")
	if !ok {
		return "", false
	}
	if payload == "" {
		return "", false
	}
	return payload, true
}

// Poll consumes at most one pending line. It reports ok=false when nothing
// is pending or the line is not a feature, and an error wrapping
// common.ErrTransportClosed once input has ended and been drained.
func (l *Line) Poll() (feature string, ok bool, err error) {
	select {
	case line, open := <-l.lines:
		if !open {
			return "", false, l.closedErr()
		}
		feature, ok = ParseFeature(line, l.opts.FeatureTag)
		if !ok {
			l.logger.Debug(context.Background(), "ignoring non-feature line", "length", len(line))
		}
		return feature, ok, nil
	default:
		return "", false, nil
	}
}

func (l *Line) closedErr() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	if l.readErr == nil || errors.Is(l.readErr, io.EOF) {
		return common.ErrTransportClosed
	}
	return fmt.Errorf("%w: %w", common.ErrTransportClosed, l.readErr)
}

// Acquire polls every PollInterval until a feature arrives. Lines queued
// before the call are discarded, so only a feature sent after Acquire starts
// is returned. timeout <= 0 waits until ctx is done. Running out of time
// returns common.ErrAcquireTimeout; cancellation returns ctx's error.
func (l *Line) Acquire(ctx context.Context, timeout time.Duration) (string, error) {
	if n := l.discardPending(); n > 0 {
		l.logger.Debug(ctx, "discarded stale lines", "count", n)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, common.ErrAcquireTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()

	for {
		feature, ok, err := l.Poll()
		if err != nil {
			return "", err
		}
		if ok {
			return feature, nil
		}

		select {
		case <-ctx.Done():
			if cause := context.Cause(ctx); errors.Is(cause, common.ErrAcquireTimeout) {
				return "", cause
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Signal reports an authentication outcome to the camera module.
func (l *Line) Signal(ctx context.Context, pass bool) error {
	literal := l.opts.FailLiteral
	if pass {
		literal = l.opts.PassLiteral
	}

	l.wmu.Lock()
	defer l.wmu.Unlock()

	if _, err := io.WriteString(l.rw, literal+"\n"); err != nil {
		l.logger.Error(ctx, "signal write failed", "literal", literal, "error", err)
		return fmt.Errorf("write %s: %w", literal, err)
	}
	return nil
}

// Close closes the underlying stream when it is closable.
func (l *Line) Close() error {
	if c, ok := l.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
