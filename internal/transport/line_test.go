package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type duplex struct {
	io.Reader
	io.Writer
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func fastOptions() Options {
	o := DefaultOptions()
	o.PollInterval = 5 * time.Millisecond
	return o
}

func newPipeLine(t *testing.T) (*Line, *io.PipeWriter, *syncBuffer) {
	t.Helper()
	pr, pw := io.Pipe()
	out := &syncBuffer{}
	l := NewLine(duplex{pr, out}, fastOptions(), logging.Nop())
	t.Cleanup(func() { pw.Close() })
	return l, pw, out
}

func TestParseFeature(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"plain", "face_feature:abc", "abc", true},
		{"trailing cr", "face_feature:abc\r", "abc", true},
		{"payload with colon", "face_feature:a:b", "a:b", true},
		{"leading space", "face_feature: abc", " abc", true},
		{"inner spaces kept", "  face_feature:a b  \r", "a b", true},
		{"empty payload", "face_feature:", "", false},
		{"blank payload", "face_feature:   ", "", false},
		{"other tag", "status:ready", "", false},
		{"no colon", "face_feature", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFeature(tt.line, common.FeatureTag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLine_PollNeverBlocks(t *testing.T) {
	l, _, _ := newPipeLine(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok, err := l.Poll()
		assert.False(t, ok)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Poll blocked with no input")
	}
}

// sendLater writes s once the caller has had time to start waiting.
func sendLater(w io.Writer, s string) {
	go func() {
		time.Sleep(20 * time.Millisecond)
		io.WriteString(w, s)
	}()
}

func waitInputEnded(t *testing.T, l *Line) {
	t.Helper()
	require.Eventually(t, func() bool {
		l.errMu.Lock()
		defer l.errMu.Unlock()
		return l.readErr != nil
	}, time.Second, 5*time.Millisecond)
}

func TestLine_AcquireSkipsNonFeatureLines(t *testing.T) {
	l, pw, _ := newPipeLine(t)

	sendLater(pw, "boot ok\nface_feature:\nface_feature:abc\n")

	got, err := l.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestLine_AcquireTimeout(t *testing.T) {
	l, _, _ := newPipeLine(t)

	start := time.Now()
	_, err := l.Acquire(context.Background(), 30*time.Millisecond)
	assert.ErrorIs(t, err, common.ErrAcquireTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLine_AcquireCancelled(t *testing.T) {
	l, _, _ := newPipeLine(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := l.Acquire(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, common.ErrAcquireTimeout)
}

func TestLine_AcquireAfterInputEnds(t *testing.T) {
	l, pw, _ := newPipeLine(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		io.WriteString(pw, "face_feature:first\n")
		pw.Close()
	}()

	got, err := l.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	_, err = l.Acquire(context.Background(), time.Second)
	assert.ErrorIs(t, err, common.ErrTransportClosed)
}

func TestLine_AcquireDiscardsLinesQueuedBeforeStart(t *testing.T) {
	l, pw, _ := newPipeLine(t)

	_, err := io.WriteString(pw, "face_feature:old0\nface_feature:old1\nface_feature:old2\nface_feature:old3\nface_feature:old4\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(l.lines) == 5 }, time.Second, 5*time.Millisecond)

	type result struct {
		feature string
		err     error
	}
	done := make(chan result, 1)
	go func() {
		f, err := l.Acquire(context.Background(), 2*time.Second)
		done <- result{f, err}
	}()

	require.Eventually(t, func() bool { return len(l.lines) == 0 }, time.Second, time.Millisecond)
	_, err = io.WriteString(pw, "face_feature:live\n")
	require.NoError(t, err)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "live", r.feature)
	case <-time.After(3 * time.Second):
		t.Fatal("Acquire did not return")
	}
}

func TestLine_StaleLineBeforeEOFIsNotAFeature(t *testing.T) {
	l := NewLine(duplex{strings.NewReader("face_feature:stale\n"), io.Discard}, fastOptions(), logging.Nop())
	waitInputEnded(t, l)

	_, err := l.Acquire(context.Background(), time.Second)
	assert.ErrorIs(t, err, common.ErrTransportClosed)
}

func TestLine_ReaderNeverBlocksOnFullQueue(t *testing.T) {
	l, pw, _ := newPipeLine(t)

	const total = pendingLines + 136
	written := make(chan struct{})
	go func() {
		defer close(written)
		for i := 0; i < total; i++ {
			if _, err := fmt.Fprintf(pw, "face_feature:f%d\n", i); err != nil {
				return
			}
		}
		pw.Close()
	}()

	select {
	case <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("reader stalled with nobody polling")
	}
	waitInputEnded(t, l)

	assert.Len(t, l.lines, pendingLines)
	got, ok, err := l.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("f%d", total-pendingLines), got)
}

func TestLine_Signal(t *testing.T) {
	l, _, out := newPipeLine(t)

	require.NoError(t, l.Signal(context.Background(), true))
	require.NoError(t, l.Signal(context.Background(), false))

	assert.Equal(t, "auth_pass\nauth_fail\n", out.String())
}

func TestLine_SignalCustomLiterals(t *testing.T) {
	out := &syncBuffer{}
	opts := fastOptions()
	opts.PassLiteral = "OK"
	opts.FailLiteral = "NO"
	l := NewLine(duplex{strings.NewReader(""), out}, opts, logging.Nop())

	require.NoError(t, l.Signal(context.Background(), false))
	assert.Equal(t, "NO\n", out.String())
}

func TestLine_SignalWriteError(t *testing.T) {
	l := NewLine(duplex{strings.NewReader(""), failingWriter{}}, fastOptions(), logging.Nop())

	err := l.Signal(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port gone")
}

func TestLine_CustomTag(t *testing.T) {
	opts := fastOptions()
	opts.FeatureTag = "feat"
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	l := NewLine(duplex{pr, io.Discard}, opts, logging.Nop())
	sendLater(pw, "face_feature:x\nfeat:y\n")

	got, err := l.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "y", got)
}
