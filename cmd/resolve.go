package cmd

import (
	"github.com/spf13/cobra"

	"impall.dev/pkg/impall/internal/domain"
	m "impall.dev/pkg/impall/internal/model"
)

// resolveCmd represents the resolve command.
var resolveCmd = newResolveCmd()

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the search root and dotted name of a path",
		Long: `Resolve a source file or package directory to the search root a loader
needs on its path and the dotted name it would be loaded by.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Resolve(cmd.Context(), domain.ResolveArgs{
				Path:   m.Path(args[0]),
				Layout: layoutFromConfig(),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
