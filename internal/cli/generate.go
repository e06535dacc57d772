package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/spf13/cobra"

	"github.com/svcforge/svcforge/internal/naming"
	"github.com/svcforge/svcforge/internal/platform"
	"github.com/svcforge/svcforge/internal/scaffold"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate-service <name>",
	Short: "Generate a new service from the template set",
	Long: longText(`
		Create services/<name> with a base application, protocol dependencies,
		Kubernetes manifests, a gRPC server entrypoint, a service implementation
		stub, a Dockerfile and a protocol definition in shared/proto.

		The command refuses to touch an existing service directory.

		Example:
		  svcforge generate-service Billing`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		name := args[0]
		fmt.Fprintf(out, "Generating service %s in %s\n", name, ws.layout.Root)
		outcome, err := ws.orchestrator(out).Generate(cmd.Context(), name)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		if err := printFiles(out, ws.layout.Root, outcome.Files); err != nil {
			logger.Warn("printing file tree", "err", err)
		}
		printWarnings(out, outcome)

		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Define the service in shared/proto/%sService.proto\n", naming.Derive(name).Pascal)
		fmt.Fprintf(out, "  2. Run 'svcforge proto-generate %s'\n", name)
		fmt.Fprintf(out, "  3. Run 'svcforge deploy-service %s'\n", name)
		return nil
	},
}

// printFiles renders paths, relative to root, as a tree. Symlinks are shown
// with their targets.
func printFiles(w io.Writer, root string, paths []string) error {
	tree := gtree.NewRoot(filepath.Base(root))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		node := tree
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for i, part := range parts {
			if i == len(parts)-1 && platform.IsSymlink(p) {
				if target, err := platform.ReadSymlinkTarget(p); err == nil {
					part += " -> " + filepath.ToSlash(target)
				}
			}
			node = node.Add(part)
		}
	}
	return gtree.OutputFromRoot(w, tree)
}

func printWarnings(w io.Writer, outcome *scaffold.Outcome) {
	warnings := outcome.Warnings()
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d warning(s):\n", len(warnings))
	for _, msg := range warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
