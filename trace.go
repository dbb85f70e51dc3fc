package coop

import (
	"fmt"
	"io"

	"github.com/mattn/go-colorable"
)

// Scheduler event trace, for debugging task interleavings. Events are
// colored per kind. The default standard-output writer goes through
// go-colorable so the escape codes work on Windows consoles; a writer passed
// to WithTrace receives them unchanged.
const (
	traceSpawn = "\x1b[32m" // green
	traceRun   = "\x1b[36m" // cyan
	traceTimer = "\x1b[33m" // yellow
	tracePost  = "\x1b[35m" // magenta
	traceExit  = "\x1b[31m" // red
	traceReset = "\x1b[0m"
)

// WithTrace writes a line per scheduler event (spawn, resume, timeout,
// post, exit) to w. A nil w selects standard output.
func WithTrace(w io.Writer) Option {
	return func(s *Scheduler) {
		if w == nil {
			w = colorable.NewColorableStdout()
		}
		s.traceW = w
	}
}

func (s *Scheduler) tracef(color, format string, args ...any) {
	if s.traceW == nil {
		return
	}
	fmt.Fprintf(s.traceW, color+"coop: "+format+traceReset+"\n", args...)
}
