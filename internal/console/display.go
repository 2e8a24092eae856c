package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/facegate/internal/models"
	"github.com/dmitrijs2005/facegate/internal/services"
)

var _ services.Display = (*TerminalDisplay)(nil)

// glyphs are the 5x5 dot patterns of the indicator matrix.
var glyphs = map[models.IdentityNumber][5]string{
	1: {"..#..", ".##..", "..#..", "..#..", ".###."},
	2: {".###.", "#...#", "...#.", "..#..", ".####"},
	3: {".###.", "#...#", "..##.", "#...#", ".###."},
}

// Glyph returns the dot pattern for n, or false when n has none.
func Glyph(n models.IdentityNumber) ([5]string, bool) {
	g, ok := glyphs[n]
	return g, ok
}

// TerminalDisplay draws the indicator matrix as text. ShowNumber holds the
// picture for the configured duration, like the hardware display does.
type TerminalDisplay struct {
	w    io.Writer
	hold time.Duration
	mu   sync.Mutex
}

func NewTerminalDisplay(w io.Writer, hold time.Duration) *TerminalDisplay {
	return &TerminalDisplay{w: crlfWriter{w}, hold: hold}
}

func (d *TerminalDisplay) Scroll(ctx context.Context, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, ">> %s\n", text)
}

// ShowNumber draws the glyph for n. Numbers without a glyph, including
// models.Unbound, clear the matrix instead.
func (d *TerminalDisplay) ShowNumber(ctx context.Context, n models.IdentityNumber) {
	g, ok := Glyph(n)
	if !ok {
		d.Clear(ctx)
		return
	}

	d.mu.Lock()
	var b strings.Builder
	for _, row := range g {
		for _, c := range row {
			if c == '#' {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	io.WriteString(d.w, b.String())
	d.mu.Unlock()

	wait(ctx, d.hold)
}

// Clear is a no-op; earlier output scrolls away on its own.
func (d *TerminalDisplay) Clear(ctx context.Context) {}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
