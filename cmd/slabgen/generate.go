package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/piwi3910/SlabGen/internal/assets"
	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/engine"
	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/project"
)

// embeddedCell names the built-in unit cell in run results.
const embeddedCell = "Fe2O3_orth.cif (embedded)"

// requestFlags are the flags describing one slab request.
type requestFlags struct {
	label     string
	thickness float64
	width     float64
	depth     float64
	miller    string
	padding   float64
}

func (rf *requestFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&rf.label, "label", "", "Request label")
	fs.Float64Var(&rf.thickness, "thickness", 0, "Minimum slab thickness in Angstrom")
	fs.Float64Var(&rf.width, "width", 0, "Target in-plane size along a in Angstrom")
	fs.Float64Var(&rf.depth, "depth", 0, "Target in-plane size along b in Angstrom")
	fs.StringVar(&rf.miller, "miller", "", `Miller index in the rhombohedral setting, e.g. "0,0,1" or "012"`)
	fs.Float64Var(&rf.padding, "padding", model.DefaultPadding, "Vacuum above the slab in Angstrom")
}

// request builds a request from the flags. Unset flags keep the values of
// base, which may come from a preset.
func (rf *requestFlags) request(fs *pflag.FlagSet, base *model.Request) (model.Request, error) {
	var req model.Request
	if base != nil {
		req = *base
	} else {
		req = model.NewRequest("", 0, 0, 0, model.MillerIndex{})
	}
	if base == nil || fs.Changed("label") {
		req.Label = rf.label
	}
	if base == nil || fs.Changed("thickness") {
		req.Thickness = rf.thickness
	}
	if base == nil || fs.Changed("width") {
		req.Width = rf.width
	}
	if base == nil || fs.Changed("depth") {
		req.Depth = rf.depth
	}
	if base == nil || fs.Changed("padding") {
		req.Padding = rf.padding
	}
	if base == nil || fs.Changed("miller") {
		if rf.miller == "" {
			return model.Request{}, fmt.Errorf("%w: --miller is required", model.ErrInvalidRequest)
		}
		m, err := model.ParseMillerIndex(rf.miller)
		if err != nil {
			return model.Request{}, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
		}
		req.Miller = m
	}
	return req, req.Validate()
}

// settingsFlags override run settings.
type settingsFlags struct {
	cell           string
	out            string
	formats        []string
	workers        int
	shiftTolerance float64
	matchTolerance float64
	unitPlanes     bool
	noCenter       bool
	noLLL          bool
	dryRun         bool
}

func (sf *settingsFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&sf.cell, "cell", "", "Unit cell CIF (default: embedded Fe2O3_orth.cif)")
	fs.StringVarP(&sf.out, "out", "o", "", "Output directory")
	fs.StringSliceVarP(&sf.formats, "format", "f", nil, "Output formats: cif, vasp, xyz")
	fs.IntVarP(&sf.workers, "workers", "j", 0, "Process terminations concurrently with N workers")
	fs.Float64Var(&sf.shiftTolerance, "shift-tol", 0, "Distance in Angstrom below which atomic planes merge")
	fs.Float64Var(&sf.matchTolerance, "match-tol", 0, "Site tolerance for duplicate terminations")
	fs.BoolVar(&sf.unitPlanes, "unit-planes", false, "Count thickness and padding in hkl planes")
	fs.BoolVar(&sf.noCenter, "no-center", false, "Keep the slab at the bottom of the cell")
	fs.BoolVar(&sf.noLLL, "no-lll", false, "Skip LLL reduction of the slab lattice")
	fs.BoolVar(&sf.dryRun, "dry-run", false, "Build slabs without writing structure files")
}

// apply copies every flag the user set into s.
func (sf *settingsFlags) apply(fs *pflag.FlagSet, s *model.Settings) {
	if fs.Changed("out") {
		s.OutputDir = sf.out
	}
	if fs.Changed("format") {
		s.Formats = append([]string(nil), sf.formats...)
	}
	if fs.Changed("workers") {
		s.Workers = sf.workers
	}
	if fs.Changed("shift-tol") {
		s.ShiftTolerance = sf.shiftTolerance
	}
	if fs.Changed("match-tol") {
		s.MatchTolerance = sf.matchTolerance
	}
	if fs.Changed("unit-planes") {
		s.InUnitPlanes = sf.unitPlanes
	}
	if fs.Changed("no-center") {
		s.CenterSlab = !sf.noCenter
	}
	if fs.Changed("no-lll") {
		s.LLLReduce = !sf.noLLL
	}
	if fs.Changed("dry-run") {
		s.DryRun = sf.dryRun
	}
}

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		rf     requestFlags
		sf     settingsFlags
		of     outputFlags
		preset string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every termination of one slab request",
		Long: `Translates the Miller index into the orthorhombic cell, cuts every distinct
termination, scales each to the requested width and depth, makes c
orthogonal to the surface and writes slab_(h, k, l)_<i>.<ext> files.`,
		Example: `  slabgen generate --thickness 10 --width 20 --depth 20 --miller "0,0,1" --padding 2
  slabgen generate --preset basal-20 --format cif,vasp --out slabs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			settings := model.DefaultSettings()
			cfg.ApplyToSettings(&settings)
			if !cmd.Flags().Changed("padding") {
				rf.padding = cfg.DefaultPadding
			}

			var base *model.Request
			if preset != "" {
				store, err := project.LoadPresets(c.presetPath())
				if err != nil {
					return fmt.Errorf("failed to load presets: %w", err)
				}
				p := store.FindByName(preset)
				if p == nil {
					return fmt.Errorf("preset %q not found", preset)
				}
				r := p.ToRequest("")
				base = &r
				settings = p.Settings
				settings.Formats = append([]string(nil), p.Settings.Formats...)
			}
			sf.apply(cmd.Flags(), &settings)

			req, err := rf.request(cmd.Flags(), base)
			if err != nil {
				return err
			}

			cellPath := sf.cell
			if cellPath == "" {
				cellPath = cfg.UnitCellPath
			}
			cell, source, err := loadCell(cellPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()

			gen := engine.New(settings, engine.WithLogger(c.log()))
			run, err := gen.Generate(ctx, cell, req)
			if err != nil {
				return err
			}
			run.Cell = source

			runs := []model.RunResult{run}
			printRuns(cmd.OutOrStdout(), runs)
			return c.writeOutputs(&cfg, runs, settings.OutputDir, of)
		},
	}

	rf.register(cmd.Flags())
	sf.register(cmd.Flags())
	of.register(cmd.Flags())
	cmd.Flags().StringVar(&preset, "preset", "", "Start from a saved preset")
	return cmd
}

// loadCell reads the unit cell at path, or the embedded hematite cell when
// path is empty. It also returns the source name recorded in run results.
func loadCell(path string) (*crystal.Structure, string, error) {
	if path == "" {
		cell, err := assets.Hematite()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load embedded unit cell: %w", err)
		}
		return cell, embeddedCell, nil
	}
	cell, err := crystal.ReadCIFFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read unit cell %q: %w", path, err)
	}
	return cell, path, nil
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// log returns the configured logger or a no-op one.
func (c *cli) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}
