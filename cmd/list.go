package cmd

import (
	"github.com/spf13/cobra"

	"impall.dev/pkg/impall/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List the units a run would load",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig(args)
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), domain.ListArgs{Config: cfg})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
