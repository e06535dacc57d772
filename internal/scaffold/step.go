package scaffold

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/svcforge/svcforge/internal/linker"
	"github.com/svcforge/svcforge/internal/naming"
)

// Policy decides what a step failure does to the rest of the workflow.
type Policy int

const (
	// Abort stops the workflow at the failing step.
	Abort Policy = iota
	// Tolerate records the failure as a warning and continues.
	Tolerate
	// Collect records the failure, continues, and fails the workflow once
	// every step has run.
	Collect
)

// Step is one named unit of a workflow.
type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context, j *Job) error
}

// Status is the recorded result of a step.
type Status string

const (
	StatusOK     Status = "ok"
	StatusWarned Status = "warn"
	StatusFailed Status = "fail"
)

// StepRecord is what happened in one step.
type StepRecord struct {
	Name     string
	Status   Status
	Warnings []string
	Err      error
	Duration time.Duration
}

// Outcome lists the steps a workflow ran, in order. Steps after an
// aborting failure are absent.
type Outcome struct {
	Workflow string
	Service  string
	Steps    []StepRecord
	Files    []string // paths written or linked, in creation order
}

// Warnings returns every warning prefixed by its step name.
func (o *Outcome) Warnings() []string {
	var out []string
	for _, s := range o.Steps {
		for _, w := range s.Warnings {
			out = append(out, s.Name+": "+w)
		}
	}
	return out
}

// StepNames returns the names of the steps that ran.
func (o *Outcome) StepNames() []string {
	names := make([]string, len(o.Steps))
	for i, s := range o.Steps {
		names[i] = s.Name
	}
	return names
}

// Job carries the state shared by the steps of one workflow run.
type Job struct {
	Name    string
	Service naming.Variants
	Vars    map[string]string
	// Link is how the service proto entry was connected, empty until the
	// link step succeeds.
	Link linker.Mode

	outcome  *Outcome
	current  *StepRecord
	reporter Reporter
}

// NewJob returns a Job for the service name.
func NewJob(name string) *Job {
	return &Job{Name: name, Vars: map[string]string{}}
}

// Warn records a non-fatal problem against the running step.
func (j *Job) Warn(format string, args ...any) {
	if j.current != nil {
		j.current.Warnings = append(j.current.Warnings, fmt.Sprintf(format, args...))
	}
}

// Wrote records a path created by the running step.
func (j *Job) Wrote(path string) {
	if j.outcome != nil {
		j.outcome.Files = append(j.outcome.Files, path)
	}
}

// Output forwards one line of subprocess output to the reporter.
func (j *Job) Output(line string) {
	if j.reporter != nil && j.current != nil {
		j.reporter.StepOutput(j.current.Name, line)
	}
}

// Execute runs steps in order against j. It returns the outcome so far
// together with a *StepError naming the step that ended the workflow.
func Execute(ctx context.Context, workflow string, steps []Step, j *Job, rep Reporter) (*Outcome, error) {
	if rep == nil {
		rep = nopReporter{}
	}
	out := &Outcome{Workflow: workflow, Service: j.Name}
	j.outcome = out
	j.reporter = rep
	defer func() { j.current = nil }()

	var (
		collected []error
		failed    []string
	)
	for _, s := range steps {
		rec := &StepRecord{Name: s.Name}
		j.current = rec

		if err := ctx.Err(); err != nil {
			rec.Status, rec.Err = StatusFailed, err
			out.Steps = append(out.Steps, *rec)
			rep.StepFinished(*rec)
			return out, &StepError{Step: s.Name, Err: err}
		}

		rep.StepStarted(s.Name)
		start := time.Now()
		err := s.Run(ctx, j)
		rec.Duration = time.Since(start)

		// Cancellation of the whole run always aborts, whatever the policy.
		policy := s.Policy
		if err != nil && ctx.Err() != nil {
			policy = Abort
		}

		switch {
		case err == nil && len(rec.Warnings) > 0:
			rec.Status = StatusWarned
		case err == nil:
			rec.Status = StatusOK
		case policy == Tolerate:
			rec.Status = StatusWarned
			rec.Warnings = append(rec.Warnings, err.Error())
		case policy == Collect:
			rec.Status, rec.Err = StatusFailed, err
			collected = append(collected, err)
			failed = append(failed, s.Name)
		default:
			rec.Status, rec.Err = StatusFailed, err
			out.Steps = append(out.Steps, *rec)
			rep.StepFinished(*rec)
			return out, &StepError{Step: s.Name, Err: err}
		}

		out.Steps = append(out.Steps, *rec)
		rep.StepFinished(*rec)
	}

	if len(collected) > 0 {
		return out, &StepError{Step: strings.Join(failed, ", "), Err: errors.Join(collected...)}
	}
	return out, nil
}
