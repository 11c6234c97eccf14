package engine

import (
	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/surface"
)

// SlabEngine produces the candidate slabs of a unit cell, one per distinct
// termination of the plane, in a stable order.
type SlabEngine interface {
	Slabs(cell *crystal.Structure, miller model.MillerIndex, thickness, padding float64) ([]*surface.Slab, error)
}

// SurfaceEngine is the SlabEngine backed by the surface package. Slabs are
// centered, LLL-reduced and never reduced to a primitive cell.
type SurfaceEngine struct {
	Options surface.Options
}

// NewSurfaceEngine configures the geometry engine from run settings.
func NewSurfaceEngine(settings model.Settings) *SurfaceEngine {
	opts := surface.DefaultOptions()
	opts.CenterSlab = settings.CenterSlab
	opts.LLLReduce = settings.LLLReduce
	opts.InUnitPlanes = settings.InUnitPlanes
	if settings.ShiftTolerance > 0 {
		opts.ShiftTolerance = settings.ShiftTolerance
	}
	if settings.MatchTolerance > 0 {
		opts.MatchTolerance = settings.MatchTolerance
	}
	return &SurfaceEngine{Options: opts}
}

func (e *SurfaceEngine) Slabs(cell *crystal.Structure, miller model.MillerIndex, thickness, padding float64) ([]*surface.Slab, error) {
	opts := e.Options
	opts.MinSlabSize = thickness
	opts.MinVacuumSize = padding
	gen, err := surface.NewGenerator(cell, miller, opts)
	if err != nil {
		return nil, err
	}
	return gen.Slabs()
}
