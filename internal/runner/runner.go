package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultWaitDelay = 2 * time.Second
	defaultTailLines = 20
)

// Command describes one external process invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string            // working directory (optional)
	Env     map[string]string // overlay on the current environment
	Timeout time.Duration     // zero means no timeout
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of one invocation.
type Result struct {
	ExitCode int
	Output   string // combined stdout and stderr
	Duration time.Duration
}

// Runner starts external commands.
type Runner struct {
	// WaitDelay bounds how long Wait keeps reading output after the process
	// exits or is killed while a descendant still holds the pipe open.
	WaitDelay time.Duration
	// TailLines is the number of output lines kept in ProcessFailedError.
	TailLines int
	Logger    *slog.Logger
}

// New returns a Runner with default settings.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		WaitDelay: defaultWaitDelay,
		TailLines: defaultTailLines,
		Logger:    logger,
	}
}

// Run executes c, calling onLine for every line of combined output as it
// arrives, and returns once the process has exited.
func (r *Runner) Run(ctx context.Context, c Command, onLine func(string)) (*Result, error) {
	exe, err := r.Start(ctx, c)
	if err != nil {
		return nil, err
	}
	for line := range exe.Lines() {
		if onLine != nil {
			onLine(line)
		}
	}
	return exe.Wait()
}

// Start launches c and returns a handle to its output and exit status.
func (r *Runner) Start(ctx context.Context, c Command) (*Execution, error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	configureProcess(cmd)
	cmd.WaitDelay = r.WaitDelay

	// Sharing one writer makes exec use a single pipe for both streams, so
	// stdout and stderr lines keep their relative order.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	logger := r.logger()
	logger.Debug("starting command", "cmd", c.String(), "dir", c.Dir, "timeout", c.Timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		pw.Close()
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &NotFoundError{Name: c.Name, Err: err}
		}
		return nil, fmt.Errorf("starting %s: %w", c.Name, err)
	}

	e := &Execution{
		command:   c,
		parent:    ctx,
		runCtx:    runCtx,
		cancel:    cancel,
		pr:        pr,
		start:     start,
		tailLines: r.TailLines,
		logger:    logger,
		readDone:  make(chan struct{}),
		exited:    make(chan struct{}),
	}

	go func() {
		e.waitErr = cmd.Wait()
		if cmd.ProcessState != nil {
			e.exitCode = cmd.ProcessState.ExitCode()
		} else {
			e.exitCode = -1
		}
		e.duration = time.Since(start)
		pw.Close()
		close(e.exited)
	}()

	return e, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// Execution is a running command.
type Execution struct {
	command   Command
	parent    context.Context
	runCtx    context.Context
	cancel    context.CancelFunc
	pr        *io.PipeReader
	start     time.Time
	tailLines int
	logger    *slog.Logger

	claimed  atomic.Bool
	output   strings.Builder
	readDone chan struct{}

	exited   chan struct{}
	waitErr  error
	exitCode int
	duration time.Duration
}

// Lines yields each line of combined output as the process produces it.
// The sequence can be ranged over once; breaking out early is allowed and
// the remaining output is still collected for the Result.
func (e *Execution) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !e.claimed.CompareAndSwap(false, true) {
			return
		}
		br := bufio.NewReader(e.pr)
		if e.pump(br, yield) {
			return
		}
		go e.pump(br, func(string) bool { return true })
	}
}

// pump reads lines until EOF or until yield asks to stop. It reports whether
// EOF was reached.
func (e *Execution) pump(br *bufio.Reader, yield func(string) bool) bool {
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			e.output.WriteString(line)
			e.output.WriteByte('\n')
			if !yield(line) && err == nil {
				return false
			}
		}
		if err != nil {
			close(e.readDone)
			return true
		}
	}
}

// Wait blocks until the process has exited and all output has been read.
func (e *Execution) Wait() (*Result, error) {
	for range e.Lines() {
	}
	<-e.readDone
	<-e.exited
	defer e.cancel()

	res := &Result{
		ExitCode: e.exitCode,
		Output:   e.output.String(),
		Duration: e.duration,
	}

	e.logger.Debug("command finished", "cmd", e.command.String(), "exit", res.ExitCode, "duration", res.Duration)

	if err := e.parent.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", e.command.Name, err)
	}
	if e.command.Timeout > 0 && errors.Is(e.runCtx.Err(), context.DeadlineExceeded) {
		return res, &TimeoutError{Command: e.command.String(), Timeout: e.command.Timeout}
	}

	var exitErr *exec.ExitError
	switch {
	case e.waitErr == nil, errors.Is(e.waitErr, exec.ErrWaitDelay) && res.ExitCode == 0:
		// A descendant kept the pipe open past exit; the command itself succeeded.
	case errors.As(e.waitErr, &exitErr):
	default:
		return res, fmt.Errorf("waiting for %s: %w", e.command.Name, e.waitErr)
	}

	if res.ExitCode != 0 {
		return res, &ProcessFailedError{
			Command:  e.command.String(),
			ExitCode: res.ExitCode,
			Tail:     tail(res.Output, e.tailLines),
		}
	}
	return res, nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if n <= 0 || s == "" {
		return ""
	}
	idx := len(s)
	for i := 0; i < n; i++ {
		j := strings.LastIndexByte(s[:idx], '\n')
		if j < 0 {
			return s
		}
		idx = j
	}
	return s[idx+1:]
}
