// slabgen cuts hematite (Fe2O3) surface slabs of a requested thickness and
// in-plane size from a unit cell and writes them as CIF, POSCAR or XYZ.
//
// Build:
//
//	go build -o slabgen ./cmd/slabgen
//
// Example:
//
//	slabgen generate --thickness 10 --width 20 --depth 20 --miller "0,0,1" --padding 2
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/project"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	verbose    bool
	configPath string
	logger     *zap.Logger
}

// newRootCmd builds the complete command tree.
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "slabgen",
		Short: "slabgen - hematite surface slab generator",
		Long: `slabgen generates Fe2O3 surface slabs for a Miller index given in the
rhombohedral setting. Every distinct termination is scaled to the requested
width and depth, made orthogonal along c and written to disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			c.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "Path of the JSON app config")

	root.AddCommand(newGenerateCmd(c))
	root.AddCommand(newBatchCmd(c))
	root.AddCommand(newFamiliesCmd())
	root.AddCommand(newCompareCmd(c))
	root.AddCommand(newPresetCmd(c))
	root.AddCommand(newConfigCmd(c))
	return root
}

// loadConfig reads the app config named by --config.
func (c *cli) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// presetPath keeps the preset store next to the config file.
func (c *cli) presetPath() string {
	return filepath.Join(filepath.Dir(c.configPath), "presets.json")
}

// exitCode maps an error to the process exit status: 2 for bad input,
// 3 when no slab could be generated, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrUnsupportedMiller):
		return 2
	case errors.Is(err, model.ErrNoSlab):
		return 3
	default:
		return 1
	}
}

func main() {
	c := &cli{}
	if err := newRootCmd(c).Execute(); err != nil {
		if c.logger != nil {
			c.logger.Error("command failed", zap.Error(err))
			_ = c.logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}
