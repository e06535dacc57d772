package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(protoCmd)
}

var protoCmd = &cobra.Command{
	Use:   "proto-generate [name]",
	Short: "Compile protocol definitions for one or all services",
	Long: longText(`
		Run the protocol compiler over every .proto file reachable through
		services/<name>/proto and write the generated sources to
		services/<name>/app/Grpc. Without a name every service is compiled;
		services without proto files are skipped with a warning.`),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		name := ""
		if len(args) == 1 {
			name = args[0]
			fmt.Fprintf(out, "Compiling protos for %s\n", name)
		} else {
			fmt.Fprintln(out, "Compiling protos for all services")
		}

		outcome, err := ws.orchestrator(out).CompileProtos(cmd.Context(), name)
		if err != nil {
			return err
		}
		if len(outcome.Steps) == 0 {
			fmt.Fprintf(out, "No services found in %s\n", ws.layout.Services)
			return nil
		}
		printWarnings(out, outcome)
		return nil
	},
}
