package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/scaffold"
	"github.com/svcforge/svcforge/internal/templates"
)

var templatesForce bool

func init() {
	templatesInitCmd.Flags().BoolVar(&templatesForce, "force", false, "Overwrite existing templates")
	templatesCmd.AddCommand(templatesInitCmd)
	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the project template set",
}

var templatesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in templates into <root>/templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		result, err := templates.Install(ws.layout.Templates, templatesForce)
		if err != nil {
			return err
		}
		for _, name := range result.Written {
			fmt.Fprintf(out, "  [ OK ] %s\n", name)
		}
		for _, name := range result.Skipped {
			fmt.Fprintf(out, "  [SKIP] %s (exists, use --force to overwrite)\n", name)
		}
		fmt.Fprintf(out, "\nTemplates in %s\n", result.Dir)
		return nil
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show required templates and the placeholders they use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		store := ws.templateStore()
		fmt.Fprintf(cmd.OutOrStdout(), "Templates from %s\n\n", store.Dir())

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TEMPLATE\tSTATUS\tPLACEHOLDERS")
		missing := 0
		for _, name := range scaffold.TemplateNames() {
			text, err := store.Load(name)
			if err != nil {
				missing++
				fmt.Fprintf(tw, "%s\tmissing\t-\n", name)
				continue
			}
			fmt.Fprintf(tw, "%s\tok\t%s\n", name, strings.Join(render.Placeholders(text), ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if missing > 0 {
			return fmt.Errorf("%d required template(s) missing; run '%s templates init'", missing, cmd.Root().Name())
		}
		return nil
	},
}
