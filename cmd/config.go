package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "impall"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	includeFlagName     = "include"
	excludeFlagName     = "exclude"
	failingFlagName     = "failing"
	recurseAllFlagName  = "recurse-all"
	clearStateFlagName  = "clear-state"
	failFastFlagName    = "fail-fast"
	warningsFlagName    = "warnings"
	reportFlagName      = "report"
	watchFlagName       = "watch"
	markerFlagName      = "marker"
	suffixFlagName      = "suffix"
	loaderFlagName      = "loader"
	commandFlagName     = "command"
	scriptFlagName      = "script"
	loadTimeoutFlagName = "timeout"
	logFileFlagName     = "log-file"
	verboseFlagName     = "verbose"

	rootsConfigKey      = "paths.roots"
	includeConfigKey    = "paths.include"
	excludeConfigKey    = "paths.exclude"
	failingConfigKey    = "paths.failing"
	recurseAllConfigKey = "run.recurse_all"
	clearStateConfigKey = "run.clear_state"
	failFastConfigKey   = "run.fail_fast"
	warningsConfigKey   = "run.warnings"
	reportConfigKey     = "run.report"
	markerConfigKey     = "layout.marker"
	suffixConfigKey     = "layout.suffix"
	loaderConfigKey     = "loader.kind"
	commandConfigKey    = "loader.command"
	scriptConfigKey     = "loader.script"
	loadTimeoutKey      = "loader.timeout"
	searchPathEnvKey    = "loader.search_path_env"

	loaderKindExec   = "exec"
	loaderKindScript = "script"

	defaultReportPath = ".impall-report.yaml"
	defaultLoaderKind = loaderKindExec

	envPrefix = "IMPALL"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".impall.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func setDefaults() {
	defaults := m.DefaultConfig()

	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(rootsConfigKey, []string{})
	viper.SetDefault(includeConfigKey, []string{})
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(failingConfigKey, []string{})

	viper.SetDefault(recurseAllConfigKey, defaults.RecurseAll)
	viper.SetDefault(clearStateConfigKey, defaults.ClearState)
	viper.SetDefault(failFastConfigKey, defaults.FailFast)
	viper.SetDefault(warningsConfigKey, string(defaults.Warnings))
	viper.SetDefault(reportConfigKey, defaultReportPath)

	viper.SetDefault(markerConfigKey, defaults.Layout.Marker)
	viper.SetDefault(suffixConfigKey, defaults.Layout.Suffix)

	viper.SetDefault(loaderConfigKey, defaultLoaderKind)
	viper.SetDefault(commandConfigKey, []string{})
	viper.SetDefault(scriptConfigKey, "")
	viper.SetDefault(loadTimeoutKey, int64(adapter.DefaultLoadTimeout.Seconds()))
	viper.SetDefault(searchPathEnvKey, adapter.DefaultSearchPathEnv)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// configList reads a list option. Entries may themselves be colon-separated,
// which is how list values arrive from the environment.
func configList(key string) []string {
	return m.SplitList(viper.GetStringSlice(key)...)
}

// layoutFromConfig returns the configured package layout.
func layoutFromConfig() m.Layout {
	return m.Layout{
		Marker: viper.GetString(markerConfigKey),
		Suffix: viper.GetString(suffixConfigKey),
	}.OrDefault()
}

// engineConfig assembles the run configuration from flags, env and config file.
// Positional roots take precedence over paths.roots.
func engineConfig(args []string) (m.Config, error) {
	warnings, err := m.ParseWarningPolicy(viper.GetString(warningsConfigKey))
	if err != nil {
		return m.Config{}, err
	}

	roots := parsePaths(args)
	if len(roots) == 0 {
		roots = parsePaths(configList(rootsConfigKey))
	}

	return m.Config{
		Roots:            roots,
		Include:          configList(includeConfigKey),
		Exclude:          configList(excludeConfigKey),
		ExpectedFailures: configList(failingConfigKey),
		RecurseAll:       viper.GetBool(recurseAllConfigKey),
		Warnings:         warnings,
		FailFast:         viper.GetBool(failFastConfigKey),
		ClearState:       viper.GetBool(clearStateConfigKey),
		Layout:           layoutFromConfig(),
	}, nil
}

func loadTimeout() time.Duration {
	seconds := viper.GetInt64(loadTimeoutKey)
	if seconds <= 0 {
		return adapter.DefaultLoadTimeout
	}

	return time.Duration(seconds) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotating file.
//
// By default it logs at the configured level; verbose forces Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
