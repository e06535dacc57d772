package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/branding"
	"github.com/svcforge/svcforge/internal/scaffold"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Global flags.
var (
	rootDir    string
	configFile string
	verbose    bool
	quiet      bool
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + " " + longText(`
		generates gRPC services from a shared template set, links them to the
		shared proto directory and drives composer, docker and protoc for them.

		A project is a directory holding services/, shared/proto and templates/.
		Settings are read from svcforge.yaml in the project root, a .env file
		and SVCFORGE_* environment variables.`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root (default: $"+branding.EnvVar("ROOT")+" or the current directory)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: <root>/"+branding.ConfigName()+".yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Hide tool output, print step results only")
}

// longText strips the common indentation of a help text.
func longText(s string) string {
	return strings.TrimSpace(dedent.Dedent(s))
}

// Execute runs the root command with build info injected via ldflags.
// Workflow failures are already narrated step by step, so only other
// errors are printed here.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var stepErr *scaffold.StepError
	if err != nil && !errors.As(err, &stepErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
