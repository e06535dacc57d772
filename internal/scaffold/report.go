package scaffold

import (
	"fmt"
	"io"
	"strings"
)

// Reporter receives workflow progress.
type Reporter interface {
	StepStarted(name string)
	StepOutput(name, line string)
	StepFinished(rec StepRecord)
}

type nopReporter struct{}

func (nopReporter) StepStarted(string)        {}
func (nopReporter) StepOutput(string, string) {}
func (nopReporter) StepFinished(StepRecord)   {}

// TextReporter narrates progress as one line per finished step. The last
// line written for a failed workflow names the failing step.
type TextReporter struct {
	W io.Writer
	// ShowOutput echoes subprocess output, indented under the step.
	ShowOutput bool
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter(w io.Writer, showOutput bool) *TextReporter {
	return &TextReporter{W: w, ShowOutput: showOutput}
}

func (r *TextReporter) StepStarted(name string) {
	if r.ShowOutput {
		fmt.Fprintf(r.W, "  [ .. ] %s\n", name)
	}
}

func (r *TextReporter) StepOutput(_, line string) {
	if r.ShowOutput {
		fmt.Fprintf(r.W, "         %s\n", line)
	}
}

func (r *TextReporter) StepFinished(rec StepRecord) {
	switch rec.Status {
	case StatusOK:
		fmt.Fprintf(r.W, "  [ OK ] %s\n", rec.Name)
	case StatusWarned:
		fmt.Fprintf(r.W, "  [WARN] %s\n", rec.Name)
		for _, w := range rec.Warnings {
			fmt.Fprintf(r.W, "         %s\n", w)
		}
	default:
		// Detail lines (such as a process output tail) go first so the
		// final line is the failure summary.
		msg := fmt.Sprint(rec.Err)
		first, detail, _ := strings.Cut(msg, "\n")
		if detail != "" {
			for _, line := range strings.Split(detail, "\n") {
				fmt.Fprintf(r.W, "         %s\n", line)
			}
		}
		fmt.Fprintf(r.W, "  [FAIL] %s: %s\n", rec.Name, first)
	}
}
