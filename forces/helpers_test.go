package forces

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/samr"
	"github.com/notargets/ibforce/utils"
)

// newUnitHierarchy builds the unit square or cube with n cells per axis, split
// into two level zero patches along x, plus an optional ratio 2 finer level
func newUnitHierarchy(t *testing.T, dim, n int, xBC utils.BCType, fine ...samr.Box) *samr.PatchHierarchy {
	var (
		cells, upper samr.IntVector
		xUpper       r3.Vec
		bcs          [3]utils.BCType
	)
	for d := 0; d < dim; d++ {
		cells[d] = n
		upper[d] = n - 1
		xUpper = samr.WithComponent(xUpper, d, 1)
		bcs[d] = utils.BCWall
	}
	bcs[0] = xBC
	g, err := samr.NewGridGeometry(dim, r3.Vec{}, xUpper, cells, bcs)
	require.NoError(t, err)
	h := samr.NewPatchHierarchy(g)
	left := samr.NewBox(dim, samr.IntVector{}, upper)
	right := left
	left.Upper[0] = n/2 - 1
	right.Lower[0] = n / 2
	_, err = h.MakeNewPatchLevel(0, samr.IntVector{}, []samr.Box{left, right})
	require.NoError(t, err)
	if len(fine) > 0 {
		_, err = h.MakeNewPatchLevel(1, samr.Uniform(dim, 2), fine)
		require.NoError(t, err)
	}
	return h
}

// fillFields samples analytic velocity and pressure into every patch of h,
// ghosts included, and builds the volume weights
func fillFields(t *testing.T, h *samr.PatchHierarchy,
	vel func(x [3]float64) [3]float64, pres func(x [3]float64) float64) (f Fields) {
	var err error
	vdb := h.Variables()
	f.Velocity, err = vdb.RegisterVariable("u", samr.SideCentered, 1)
	require.NoError(t, err)
	f.Pressure, err = vdb.RegisterVariable("p", samr.CellCentered, 1)
	require.NoError(t, err)
	f.VolumeWeight, err = vdb.RegisterVariable("vol", samr.SideCentered, 0)
	require.NoError(t, err)
	require.NoError(t, h.AllocatePatchData(f.Velocity, samr.AllRanks))
	require.NoError(t, h.AllocatePatchData(f.Pressure, samr.AllRanks))
	for ln := 0; ln < h.NumberOfLevels(); ln++ {
		for _, patch := range h.PatchLevel(ln).Patches {
			u := patch.SideData(f.Velocity)
			for axis := 0; axis < patch.Box.Dim; axis++ {
				u.EachFace(axis, func(face samr.IntVector) {
					si := samr.NewSideIndex(face, axis, samr.Lower)
					u.Set(si, vel(patch.FaceCenter(si))[axis])
				})
			}
			p := patch.CellData(f.Pressure)
			p.GhostBox().Each(func(i samr.IntVector) {
				p.Set(i, pres(patch.CellCenter(i)))
			})
		}
	}
	require.NoError(t, ComputeSideVolumeWeights(h, f.VolumeWeight, samr.AllRanks))
	return
}

func constantPressure(p0 float64) func(x [3]float64) float64 {
	return func(x [3]float64) float64 { return p0 }
}

func uniformVelocity(u [3]float64) func(x [3]float64) [3]float64 {
	return func(x [3]float64) [3]float64 { return u }
}

// advance runs one update, compute and postprocess cycle for a single body
// and returns its state before promotion
func advance(t *testing.T, e *Evaluator, h *samr.PatchHierarchy, f Fields, id int,
	t0, t1 float64, boxVel, pNew, lNew r3.Vec) ForceObject {
	t.Helper()
	require.NoError(t, e.UpdateStructureDomain(id, 0, t0, t1, boxVel, pNew, lNew))
	require.NoError(t, e.ComputeHydrodynamicForce(f, h, 0, h.FinestLevelNumber(), t0, t1))
	fo, err := e.GetForce(id)
	require.NoError(t, err)
	e.PostprocessIntegrateData(t0, t1)
	return fo
}

func assertVecInDelta(t *testing.T, expected, actual r3.Vec, delta float64, msg string) {
	t.Helper()
	ev, av := samr.ArrayFromVec(expected), samr.ArrayFromVec(actual)
	assert.True(t, floats.EqualApprox(ev[:], av[:], delta),
		fmt.Sprintf("%s: expected %v, have %v", msg, expected, actual))
}
