package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/doctor"
	"github.com/svcforge/svcforge/internal/project"
	"github.com/svcforge/svcforge/internal/runner"
)

var (
	checkTools   bool
	checkProject bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkTools, "check-tools", false, "Verify configured tools are installed and recent enough")
	doctorCmd.Flags().BoolVar(&checkProject, "check-project", false, "Verify project directories and proto links")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check tools and project layout",
	Long:  `Run diagnostic checks on the external tools and the project directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		// If no specific flag, run all checks.
		all := !checkTools && !checkProject
		problems := 0
		if all || checkTools {
			reports := doctor.New(runner.New(logger)).Check(cmd.Context(), ws.settings)
			problems += doctor.Print(out, reports)
		}
		if all || checkProject {
			if all {
				fmt.Fprintln(out)
			}
			problems += project.Check(out, ws.layout)
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}
