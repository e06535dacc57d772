package doctor

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/runner"
)

const versionTimeout = 10 * time.Second

// Status is the outcome of checking one tool.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMissing  Status = "missing"
	StatusOutdated Status = "outdated"
	StatusUnknown  Status = "unknown" // found, but its version could not be read
)

// Report describes one checked executable.
type Report struct {
	Name    string
	Path    string
	Version string
	Minimum string
	Status  Status
	Detail  string
	UsedBy  []string // tool keys whose argv starts with Name
}

// Runner executes a command to completion.
type Runner interface {
	Run(ctx context.Context, c runner.Command, onLine func(string)) (*runner.Result, error)
}

// Doctor checks executables referenced by the configured tools.
type Doctor struct {
	Runner   Runner
	LookPath func(string) (string, error)
}

// New returns a Doctor that resolves executables on PATH.
func New(r Runner) *Doctor {
	return &Doctor{Runner: r, LookPath: exec.LookPath}
}

// Check inspects every distinct executable named by the tools in s, in
// the order the tools are listed.
func (d *Doctor) Check(ctx context.Context, s *config.Settings) []Report {
	var (
		order  []string
		usedBy = map[string][]string{}
	)
	for _, key := range config.ToolKeys {
		argv := s.Tools.Argv(key)
		if len(argv) == 0 {
			continue
		}
		name := argv[0]
		if _, seen := usedBy[name]; !seen {
			order = append(order, name)
		}
		usedBy[name] = append(usedBy[name], key)
	}

	reports := make([]Report, 0, len(order))
	for _, name := range order {
		r := d.checkOne(ctx, name, s.Doctor.MinVersions[name])
		r.UsedBy = usedBy[name]
		reports = append(reports, r)
	}
	return reports
}

func (d *Doctor) checkOne(ctx context.Context, name, minimum string) Report {
	r := Report{Name: name, Minimum: minimum}

	path, err := d.LookPath(name)
	if err != nil {
		r.Status = StatusMissing
		r.Detail = "not found on PATH"
		return r
	}
	r.Path = path

	res, err := d.Runner.Run(ctx, runner.Command{
		Name:    path,
		Args:    []string{"--version"},
		Timeout: versionTimeout,
	}, nil)
	if err != nil {
		r.Status = StatusUnknown
		r.Detail = err.Error()
		return r
	}

	v, err := ExtractVersion(res.Output)
	if err != nil {
		r.Status = StatusUnknown
		r.Detail = err.Error()
		return r
	}
	r.Version = v.String()

	if minimum == "" {
		r.Status = StatusOK
		return r
	}
	cmp, err := CompareVersions(r.Version, minimum)
	if err != nil {
		r.Status = StatusUnknown
		r.Detail = err.Error()
		return r
	}
	if cmp < 0 {
		r.Status = StatusOutdated
		r.Detail = fmt.Sprintf("version %s is older than required %s", r.Version, minimum)
		return r
	}
	r.Status = StatusOK
	return r
}

// Print writes reports in the doctor output format and returns the number
// of executables that are missing or outdated.
func Print(w io.Writer, reports []Report) int {
	fmt.Fprintln(w, "Tool check:")
	problems := 0
	for _, r := range reports {
		switch r.Status {
		case StatusOK:
			fmt.Fprintf(w, "  [ OK ] %s %s (%s)\n", r.Name, r.Version, r.Path)
		case StatusMissing:
			fmt.Fprintf(w, "  [MISS] %s %s\n", r.Name, r.Detail)
			problems++
		case StatusOutdated:
			fmt.Fprintf(w, "  [FAIL] %s %s\n", r.Name, r.Detail)
			problems++
		default:
			fmt.Fprintf(w, "  [WARN] %s: %s\n", r.Name, r.Detail)
		}
	}

	if problems > 0 {
		fmt.Fprintf(w, "\n  %d tool(s) need attention.\n", problems)
	} else {
		fmt.Fprintf(w, "  [ OK ] All %d tools available\n", len(reports))
	}
	return problems
}
