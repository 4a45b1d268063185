package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/viper"

	"impall.dev/pkg/impall/internal/adapter"
	m "impall.dev/pkg/impall/internal/model"
)

// selectedLoader is the loader handed to the engine at start-up. The run
// command swaps the concrete loader once flags and config are known.
type selectedLoader struct {
	mu      sync.RWMutex
	current adapter.Loader
}

func newSelectedLoader(initial adapter.Loader) *selectedLoader {
	return &selectedLoader{current: initial}
}

func (s *selectedLoader) use(loader adapter.Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = loader
}

func (s *selectedLoader) get() adapter.Loader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Load implements adapter.Loader.
func (s *selectedLoader) Load(ctx context.Context, env *m.Environment, unit m.Unit) error {
	return s.get().Load(ctx, env, unit)
}

// InvalidateCaches implements adapter.CacheInvalidator when the current loader does.
func (s *selectedLoader) InvalidateCaches() {
	if invalidator, ok := s.get().(adapter.CacheInvalidator); ok {
		invalidator.InvalidateCaches()
	}
}

// loaderFromConfig builds the loader named by loader.kind.
func loaderFromConfig() (adapter.Loader, error) {
	opts := []adapter.ExecOption{
		adapter.WithTimeout(loadTimeout()),
		adapter.WithSearchPathEnv(viper.GetString(searchPathEnvKey)),
	}

	kind := viper.GetString(loaderConfigKey)

	switch kind {
	case "", loaderKindExec:
		if command := viper.GetStringSlice(commandConfigKey); len(command) > 0 {
			opts = append(opts, adapter.WithCommand(command...))
		}

		return adapter.NewExecLoader(opts...), nil

	case loaderKindScript:
		var script string

		if path := viper.GetString(scriptConfigKey); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read loader script: %w", err)
			}

			script = string(data)
		}

		loader, err := adapter.NewScriptLoader(script, opts...)
		if err != nil {
			slog.Error("Failed to build script loader", "error", err)
			return nil, err
		}

		return loader, nil
	}

	return nil, fmt.Errorf("unknown loader %q (want %s or %s)", kind, loaderKindExec, loaderKindScript)
}

var (
	_ adapter.Loader           = (*selectedLoader)(nil)
	_ adapter.CacheInvalidator = (*selectedLoader)(nil)
)
