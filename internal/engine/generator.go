// Package engine turns slab requests into written slab files: it maps the
// Miller index into the orthorhombic setting, asks a SlabEngine for the
// candidate terminations, then scales, orthogonalizes and writes each one.
package engine

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/surface"
)

// Generator runs slab requests against one set of settings.
type Generator struct {
	Settings model.Settings

	engine SlabEngine
	logger *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithEngine replaces the geometry engine.
func WithEngine(e SlabEngine) Option {
	return func(g *Generator) { g.engine = e }
}

func New(settings model.Settings, opts ...Option) *Generator {
	g := &Generator{
		Settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.engine == nil {
		g.engine = NewSurfaceEngine(settings)
	}
	return g
}

// Multipliers returns the in-plane replication counts that bring a slab with
// native lengths a and b closest to width and depth. Each is at least 1.
func Multipliers(a, b, width, depth float64) (int, int) {
	return multiplier(width, a), multiplier(depth, b)
}

func multiplier(target, length float64) int {
	if length <= 0 {
		return 1
	}
	return max(1, int(math.Round(target/length)))
}

// SlabFileName names the i-th variant of a request, embedding the index as
// requested by the caller, e.g. "slab_(0, 0, 1)_0.cif".
func SlabFileName(miller model.MillerIndex, i int, f crystal.Format) string {
	return fmt.Sprintf("slab_%s_%d%s", miller, i, f.Ext())
}

func (g *Generator) formats() ([]crystal.Format, error) {
	if len(g.Settings.Formats) == 0 {
		return []crystal.Format{crystal.FormatCIF}, nil
	}
	out := make([]crystal.Format, 0, len(g.Settings.Formats))
	seen := make(map[crystal.Format]bool)
	for _, name := range g.Settings.Formats {
		f, err := crystal.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Generate runs one request: translate the index, generate candidates, then
// scale, orthogonalize and write each candidate. Files are written into
// Settings.OutputDir unless Settings.DryRun is set. A failed write stops the
// run; files already written stay on disk.
func (g *Generator) Generate(ctx context.Context, cell *crystal.Structure, req model.Request) (model.RunResult, error) {
	if err := req.Validate(); err != nil {
		return model.RunResult{}, err
	}
	orth, err := TranslateMiller(req.Miller)
	if err != nil {
		return model.RunResult{}, err
	}
	formats, err := g.formats()
	if err != nil {
		return model.RunResult{}, err
	}

	log := g.logger.With(
		zap.String("request", req.DisplayName()),
		zap.Stringer("miller", req.Miller),
		zap.Stringer("orth_miller", orth),
	)
	log.Info("generating slabs",
		zap.Float64("thickness", req.Thickness),
		zap.Float64("width", req.Width),
		zap.Float64("depth", req.Depth),
		zap.Float64("padding", req.Padding),
	)

	slabs, err := g.engine.Slabs(cell, orth, req.Thickness, req.Padding)
	if err != nil {
		return model.RunResult{}, fmt.Errorf("failed to generate slabs for %s: %w", orth, err)
	}
	if len(slabs) == 0 {
		return model.RunResult{}, fmt.Errorf("%w: %s thickness %g padding %g", model.ErrNoSlab, req.Miller, req.Thickness, req.Padding)
	}
	log.Info("candidates ready", zap.Int("candidates", len(slabs)))

	results := make([]model.SlabResult, len(slabs))
	process := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := g.processSlab(slabs[i], i, req, orth, formats)
		if err != nil {
			return err
		}
		results[i] = res
		log.Debug("slab ready",
			zap.Int("slab", i),
			zap.Int("atoms", res.Atoms),
			zap.Int("mult_a", res.MultA),
			zap.Int("mult_b", res.MultB),
			zap.Strings("file", res.Files),
			zap.Strings("planned", res.Planned),
		)
		return nil
	}

	if g.Settings.Workers > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.Settings.Workers)
		for i := range slabs {
			i := i
			eg.Go(func() error { return process(egCtx, i) })
		}
		if err := eg.Wait(); err != nil {
			return model.RunResult{}, err
		}
	} else {
		for i := range slabs {
			if err := process(ctx, i); err != nil {
				return model.RunResult{}, err
			}
		}
	}

	settings := g.Settings
	settings.Formats = append([]string(nil), g.Settings.Formats...)
	return model.RunResult{
		ID:         uuid.New().String()[:8],
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Request:    req,
		OrthMiller: orth,
		Settings:   settings,
		Slabs:      results,
	}, nil
}

// processSlab scales one candidate to the requested size, makes c
// orthogonal and writes it in every format.
func (g *Generator) processSlab(slab *surface.Slab, i int, req model.Request, orth model.MillerIndex, formats []crystal.Format) (model.SlabResult, error) {
	abc := slab.Lattice.Lengths()
	ma, mb := Multipliers(abc[0], abc[1], req.Width, req.Depth)

	scaled, err := slab.MakeSupercell(ma, mb)
	if err != nil {
		return model.SlabResult{}, fmt.Errorf("failed to scale slab %d: %w", i, err)
	}
	final, err := scaled.OrthogonalC()
	if err != nil {
		return model.SlabResult{}, fmt.Errorf("failed to orthogonalize slab %d: %w", i, err)
	}

	var files, planned []string
	for _, f := range formats {
		path := filepath.Join(g.Settings.OutputDir, SlabFileName(req.Miller, i, f))
		if g.Settings.DryRun {
			planned = append(planned, path)
			continue
		}
		if err := f.WriteFile(path, &final.Structure); err != nil {
			return model.SlabResult{}, fmt.Errorf("write slab %q: %w", path, err)
		}
		files = append(files, path)
	}

	res := describeSlab(final, i, req.Miller, orth, ma, mb, files)
	res.Planned = planned
	return res, nil
}

func describeSlab(s *surface.Slab, i int, miller, orth model.MillerIndex, ma, mb int, files []string) model.SlabResult {
	abc := s.Lattice.Lengths()
	ang := s.Lattice.Angles()
	res := model.SlabResult{
		Index:       i,
		Miller:      miller,
		OrthMiller:  orth,
		Shift:       s.Shift,
		MultA:       ma,
		MultB:       mb,
		Lengths:     [3]float64(abc),
		Angles:      [3]float64(ang),
		Atoms:       s.Len(),
		Composition: s.Composition(),
		Formula:     s.Formula(),
		SurfaceArea: s.SurfaceArea(),
		Thickness:   s.Thickness(),
		Mass:        s.Mass(),
		Files:       files,
		Lattice:     [3][3]float64{s.Lattice.Matrix[0], s.Lattice.Matrix[1], s.Lattice.Matrix[2]},
		Sites:       make([]model.AtomSite, s.Len()),
	}
	for j, site := range s.Sites {
		c := s.Cartesian(j)
		res.Sites[j] = model.AtomSite{Species: site.Species, X: c[0], Y: c[1], Z: c[2]}
	}
	return res
}
