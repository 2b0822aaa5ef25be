// Package console implements the Reporter port as coloured terminal output.
package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Reporter = (*Reporter)(nil)

// Reporter writes severity-coded progress lines:
//
//	[15:04:05] [*] message
//	[15:04:05] [!] error message
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	// live enables colour and in-place redraw of the countdown line.
	live bool

	info, success, warning, failure *color.Color

	lastCountdown int // Seconds last printed by Countdown; -1 when idle.
}

// New creates a Reporter writing to out. Colour and the live countdown are
// enabled only when out is a terminal.
func New(out io.Writer) *Reporter {
	live := false
	if f, ok := out.(*os.File); ok {
		live = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newReporter(out, time.Now, live)
}

func newReporter(out io.Writer, now func() time.Time, live bool) *Reporter {
	r := &Reporter{
		out:           out,
		now:           now,
		live:          live,
		info:          color.New(color.FgBlue),
		success:       color.New(color.FgGreen),
		warning:       color.New(color.FgYellow),
		failure:       color.New(color.FgRed),
		lastCountdown: -1,
	}
	for _, c := range []*color.Color{r.info, r.success, r.warning, r.failure} {
		if live {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// AccountHeader prints the per-account banner without a timestamp.
func (r *Reporter) AccountHeader(number int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.success.Fprintf(r.out, "========== Account %d | %s ==========\n", number, name)
}

func (r *Reporter) Info(msg string)    { r.line(r.info, "*", msg) }
func (r *Reporter) Success(msg string) { r.line(r.success, "*", msg) }
func (r *Reporter) Warning(msg string) { r.line(r.warning, "*", msg) }
func (r *Reporter) Error(msg string)   { r.line(r.failure, "!", msg) }

func (r *Reporter) line(c *color.Color, marker, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = c.Fprintf(r.out, "[%s] [%s] %s\n", r.now().Format("15:04:05"), marker, msg)
}

// Countdown redraws the wait line in place on a terminal. Elsewhere it prints
// a full line at the start, on each whole minute, and at zero.
func (r *Reporter) Countdown(remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	secs := int(math.Ceil(remaining.Seconds()))
	if secs < 0 {
		secs = 0
	}
	if secs == r.lastCountdown {
		return
	}
	first := r.lastCountdown < 0
	r.lastCountdown = secs

	text := fmt.Sprintf("===== All accounts completed, waiting %d seconds to continue the loop =====", secs)
	if r.live {
		_, _ = fmt.Fprint(r.out, "\r"+text)
		return
	}
	if first || secs%60 == 0 {
		_, _ = fmt.Fprintln(r.out, text)
	}
}

// CountdownDone ends the live line so following output starts on a fresh line.
func (r *Reporter) CountdownDone() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live && r.lastCountdown >= 0 {
		_, _ = fmt.Fprintln(r.out)
	}
	r.lastCountdown = -1
}
