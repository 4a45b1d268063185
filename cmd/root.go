// Package cmd provides the root command and CLI setup for impall.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"impall.dev/pkg/impall/internal/adapter"
	"impall.dev/pkg/impall/internal/controller"
	"impall.dev/pkg/impall/internal/domain"
	m "impall.dev/pkg/impall/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var env *m.Environment
var loader *selectedLoader
var engine domain.Engine
var reportStore adapter.ReportStore
var watcher adapter.Watcher
var workflow domain.Workflow
var ui controller.UI

// logFileFlag and verboseFlag are root-level flags shared by every command.
var logFileFlag string
var verboseFlag bool

// Filter flags shared by run and list.
var includePatterns []string
var excludePatterns []string
var recurseAllFlag bool
var markerFlag string
var suffixFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	env = m.NewEnvironment(filepath.SplitList(os.Getenv(adapter.DefaultSearchPathEnv))...)
	loader = newSelectedLoader(adapter.NewExecLoader())
	engine = domain.NewEngine(fsAdapter, env, loader)
	reportStore = adapter.NewReportStore()
	watcher = adapter.NewFSWatcher(adapter.DefaultDebounce)
	workflow = domain.NewWorkflow(
		engine,
		reportStore,
		watcher,
		ui,
	)
}

const patternsHelp = `Patterns are dotted names matched segment by segment:
  - pkg.mod        exactly pkg.mod
  - pkg.*          every direct child of pkg
  - pkg.**         pkg and everything below it
  - pkg/mod.py     path form, same as pkg.mod
List options accept colon-separated values, e.g. IMPALL_PATHS_EXCLUDE=a.b:c.**`

const rootLongDescription = `Impall discovers every loadable unit below one or more root directories
and loads each one in isolation, so a project can guarantee that all of its
modules at least load without errors or warnings.

` + patternsHelp

const runLongDescription = `Load every unit below the given roots (default: guessed from the working
directory) and report successes and failures.

` + patternsHelp

const listLongDescription = `List the units a run would load, without loading them.

` + patternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "impall",
		Short:         "Load every module of a project in isolation",
		Long:          rootLongDescription,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "file receiving the rotating debug log")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringArrayVarP(&includePatterns, includeFlagName, "i", viper.GetStringSlice(includeConfigKey), "only load units matching pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(includeFlagName), includeConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "e", viper.GetStringSlice(excludeConfigKey), "skip units matching pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&recurseAllFlag, recurseAllFlagName, "a", viper.GetBool(recurseAllConfigKey), "descend into directories that are not packages")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(recurseAllFlagName), recurseAllConfigKey)

	cmd.PersistentFlags().StringVar(&markerFlag, markerFlagName, viper.GetString(markerConfigKey), "file that marks a directory as a package")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(markerFlagName), markerConfigKey)

	cmd.PersistentFlags().StringVar(&suffixFlag, suffixFlagName, viper.GetString(suffixConfigKey), "extension of loadable source files")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(suffixFlagName), suffixConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the command context, which ends watch mode cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(exitCode(rootCmd, err))
	}
}

// exitCode prints err unless it only signals a failing run whose report was
// already shown, and returns the process exit status.
func exitCode(cmd *cobra.Command, err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}

	var failure *domain.LoadFailure
	if !errors.Is(err, domain.ErrRunFailed) && !errors.As(err, &failure) {
		cmd.PrintErrln("Error:", err)
	}

	return 1
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
