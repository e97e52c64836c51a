package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator reports the progress of one long-running step. On a terminal it
// animates a spinner; elsewhere it stays silent until the step finishes.
type Indicator struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
	message string
}

// NewIndicator returns an Indicator writing to w with the given capabilities.
func NewIndicator(w io.Writer, caps TerminalCapabilities) *Indicator {
	return &Indicator{w: w, caps: caps, symbols: SelectSymbols(caps)}
}

// Start begins reporting a step described by message.
func (i *Indicator) Start(message string) {
	i.message = message
	if !i.caps.IsTTY {
		return
	}

	i.spin = spinner.New(
		spinner.CharSets[i.symbols.SpinnerSet],
		100*time.Millisecond,
		spinner.WithWriter(i.w),
	)
	i.spin.Suffix = " " + message
	i.spin.Start()
}

// Stop ends the step and prints its outcome. Without a terminal only
// failures are printed.
func (i *Indicator) Stop(err error) {
	if i.spin != nil {
		i.spin.Stop()
		i.spin = nil
	}

	switch {
	case err != nil:
		fmt.Fprintf(i.w, "%s %s\n", i.symbols.Failure, i.message)
	case i.caps.IsTTY:
		fmt.Fprintf(i.w, "%s %s\n", i.symbols.Checkmark, i.message)
	}
}
