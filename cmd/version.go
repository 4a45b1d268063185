package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"impall.dev/pkg/impall/internal/adapter"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version and the active loader setup",
		Long: `Print the impall build version, the Go toolchain it was built with, and the
package layout and loader a run would use with the current configuration.`,
		Run: func(cmd *cobra.Command, _ []string) {
			version, goVersion := "unknown", "unknown"
			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
				if info.Main.Version != "" {
					version = info.Main.Version
				}
			}

			layout := layoutFromConfig()

			cmd.Printf("impall %s (%s)\n", version, goVersion)
			cmd.Printf("layout: marker %s, suffix %s\n", layout.Marker, layout.Suffix)
			cmd.Printf("loader: %s\n", loaderSummary())
		},
	}
}

// loaderSummary describes the configured loader in one line.
func loaderSummary() string {
	switch kind := viper.GetString(loaderConfigKey); kind {
	case loaderKindScript:
		if script := viper.GetString(scriptConfigKey); script != "" {
			return "script " + script
		}

		return "script (built-in)"
	case "", loaderKindExec:
		command := viper.GetStringSlice(commandConfigKey)
		if len(command) == 0 {
			return "exec " + adapter.DefaultCommand[0] + " (built-in probe)"
		}

		return "exec " + strings.Join(command, " ")
	default:
		return kind + " (unknown)"
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
