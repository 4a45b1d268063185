package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"impall.dev/pkg/impall/internal/domain"
	m "impall.dev/pkg/impall/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [report]",
		Short: "View a report saved by a previous run",
		Long:  "View a YAML report written by run (default: the configured run.report file).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath := m.Path(viper.GetString(reportConfigKey))
			if len(args) == 1 {
				reportPath = m.Path(args[0])
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{ReportPath: reportPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
