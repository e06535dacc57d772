package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/config"
)

var deployTag string

func init() {
	deployCmd.Flags().StringVar(&deployTag, "tag", "", "Image tag (default: image.tag setting)")
	rootCmd.AddCommand(deployCmd)
}

var deployCmd = &cobra.Command{
	Use:   "deploy-service <name>",
	Short: "Build, push and run the container for a service",
	Long: longText(`
		Build the image for services/<name>, push it, stop and remove any
		running container of the same name, then start a new one with the
		configured port published. A failure to stop the old container is
		only a warning.

		Example:
		  svcforge deploy-service Billing --tag v1.4.0`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		if deployTag != "" {
			ws.settings.Image.Tag = deployTag
			if err := config.Validate(ws.settings); err != nil {
				return fmt.Errorf("--tag: %w", err)
			}
		}
		out := cmd.OutOrStdout()

		name := args[0]
		fmt.Fprintf(out, "Deploying service %s\n", name)
		outcome, err := ws.orchestrator(out).Deploy(cmd.Context(), name)
		if err != nil {
			return err
		}
		printWarnings(out, outcome)
		fmt.Fprintf(out, "\nService %s is running.\n", name)
		return nil
	},
}
