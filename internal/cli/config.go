package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect project settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as YAML",
	Long: longText(`
		Print the settings after merging defaults, the project config file,
		the .env file and environment variables. The output can be saved as
		svcforge.yaml and edited.`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		data, err := config.Marshal(ws.settings)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}
