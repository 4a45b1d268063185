package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an impall.yaml with the current settings",
		Long: `Write impall.yaml to the working directory with every option impall reads:
roots and patterns under paths, run behaviour under run, the package layout
and the loader. Values given as flags or IMPALL_* variables are written too,
so "impall init -e pkg.tests.**" records that exclude. An existing file is
never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)

			var exists viper.ConfigFileAlreadyExistsError
			if errors.As(err, &exists) {
				return fmt.Errorf("failed to write config file: %s already exists, edit or remove it", targetPath)
			}

			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("Wrote %s (layout %s, loader %s)\n", targetPath, layoutFromConfig().Marker, loaderSummary())

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
