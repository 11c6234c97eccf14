package engine

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/surface"
)

func TestBuildDefaultScenarios(t *testing.T) {
	req := testRequest(model.MillerIndex{0, 0, 1}, 20, 20)
	scenarios := BuildDefaultScenarios(req, model.DefaultSettings())

	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, 20.0, scenarios[1].Request.Thickness)
	assert.Equal(t, 5.0, scenarios[2].Request.Thickness)
	assert.Equal(t, 17.0, scenarios[3].Request.Padding)
	assert.False(t, scenarios[4].Settings.LLLReduce)

	noLLL := model.DefaultSettings()
	noLLL.LLLReduce = false
	thin := req
	thin.Thickness = 1
	assert.Len(t, BuildDefaultScenarios(thin, noLLL), 3)
}

func TestCompareScenarios(t *testing.T) {
	fake := &fakeEngine{slabs: []*surface.Slab{orthoSlab(5, 4), orthoSlab(10, 4)}}
	settings := testSettings(t)
	req := testRequest(model.MillerIndex{0, 0, 1}, 20, 8)

	scenarios := BuildDefaultScenarios(req, settings)
	scenarios = append(scenarios, ComparisonScenario{
		Name:     "Unsupported",
		Request:  testRequest(model.MillerIndex{1, 1, 1}, 20, 8),
		Settings: settings,
	})

	results := CompareScenarios(context.Background(), &crystal.Structure{}, scenarios, WithEngine(fake))
	require.Len(t, results, len(scenarios))

	for _, r := range results[:len(results)-1] {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, 2, r.Terminations)
		// 4x2 and 2x2 supercells of a two-atom slab
		assert.Equal(t, 8, r.MinAtoms)
		assert.Equal(t, 16, r.MaxAtoms)
		assert.InDelta(t, 20, r.CellHeight, 1e-9)
	}

	last := results[len(results)-1]
	assert.ErrorIs(t, last.Err, model.ErrUnsupportedMiller)
	assert.Zero(t, last.Terminations)

	entries, err := os.ReadDir(settings.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "comparison must not write files")
}
