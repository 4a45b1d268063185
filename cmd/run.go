package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"impall.dev/pkg/impall/internal/domain"
	m "impall.dev/pkg/impall/internal/model"
)

var failingPatterns []string
var clearStateFlag bool
var failFastFlag bool
var warningsFlag string
var reportPathFlag string
var watchFlag bool
var loaderKindFlag string
var commandFlag []string
var scriptFlag string
var loadTimeoutFlag int64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Load every unit in isolation and report failures",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig(args)
			if err != nil {
				return err
			}

			selected, err := loaderFromConfig()
			if err != nil {
				return err
			}

			loader.use(selected)

			cmd.SilenceUsage = true

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Config:     cfg,
				ReportPath: m.Path(viper.GetString(reportConfigKey)),
				Watch:      watchFlag,
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&failingPatterns, failingFlagName, "f", viper.GetStringSlice(failingConfigKey), "unit expected to fail (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(failingFlagName), failingConfigKey)

	cmd.Flags().BoolVar(&clearStateFlag, clearStateFlagName, viper.GetBool(clearStateConfigKey), "drop units registered by each load before the next one")
	bindFlagToConfig(cmd.Flags().Lookup(clearStateFlagName), clearStateConfigKey)

	cmd.Flags().BoolVarP(&failFastFlag, failFastFlagName, "r", viper.GetBool(failFastConfigKey), "stop at the first failing unit")
	bindFlagToConfig(cmd.Flags().Lookup(failFastFlagName), failFastConfigKey)

	cmd.Flags().StringVarP(&warningsFlag, warningsFlagName, "w", viper.GetString(warningsConfigKey), "warning policy: default, error, ignore, always, module or once")
	bindFlagToConfig(cmd.Flags().Lookup(warningsFlagName), warningsConfigKey)

	cmd.Flags().StringVarP(&reportPathFlag, reportFlagName, "o", viper.GetString(reportConfigKey), "YAML report file written after each run (empty disables)")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)

	cmd.Flags().StringVar(&loaderKindFlag, loaderFlagName, viper.GetString(loaderConfigKey), "loader: exec runs a command per unit, script runs a shell script per unit")
	bindFlagToConfig(cmd.Flags().Lookup(loaderFlagName), loaderConfigKey)

	cmd.Flags().StringArrayVar(&commandFlag, commandFlagName, viper.GetStringSlice(commandConfigKey), "exec loader argument; repeat for each one ({unit}, {root}, {path}, {warnings} are expanded)")
	bindFlagToConfig(cmd.Flags().Lookup(commandFlagName), commandConfigKey)

	cmd.Flags().StringVar(&scriptFlag, scriptFlagName, viper.GetString(scriptConfigKey), "shell script file run by the script loader")
	bindFlagToConfig(cmd.Flags().Lookup(scriptFlagName), scriptConfigKey)

	cmd.Flags().Int64Var(&loadTimeoutFlag, loadTimeoutFlagName, viper.GetInt64(loadTimeoutKey), "seconds allowed for one load attempt")
	bindFlagToConfig(cmd.Flags().Lookup(loadTimeoutFlagName), loadTimeoutKey)

	cmd.Flags().BoolVar(&watchFlag, watchFlagName, false, "run again whenever a source file changes")
}
