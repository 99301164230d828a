package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/ledgerdrive/internal/saga"
)

const barWidth = 30

// progressPrinter renders saga events. On a terminal it redraws one bar in
// place; otherwise it prints a line per step.
type progressPrinter struct {
	w        io.Writer
	tty      bool
	lastStep saga.Step
	drawn    bool
}

func newProgressPrinter(w io.Writer, tty bool) *progressPrinter {
	return &progressPrinter{w: w, tty: tty}
}

func bar(p float64) string {
	n := int(p * barWidth)
	n = min(max(n, 0), barWidth)
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", barWidth-n) + "]"
}

func (p *progressPrinter) Render(ev saga.Event) {
	if p.tty {
		fmt.Fprintf(p.w, "\r%s %3.0f%% %-16s", bar(ev.Progress), ev.Progress*100, ev.Step)
		p.drawn = true
		return
	}

	if ev.Step == p.lastStep && !ev.Terminal() {
		return
	}
	p.lastStep = ev.Step
	fmt.Fprintf(p.w, "%3.0f%% %s\n", ev.Progress*100, ev.Step)
}

// Done ends the bar line.
func (p *progressPrinter) Done() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
