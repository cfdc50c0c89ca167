package forces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/samr"
	"github.com/notargets/ibforce/utils"
)

func TestFaceWeightsSingleLevel(t *testing.T) {
	{ // 2D, unequal spacing
		g, err := samr.NewGridGeometry(2, r3.Vec{}, r3.Vec{X: 1, Y: 2}, samr.IntVector{4, 4},
			[3]utils.BCType{utils.BCWall, utils.BCWall})
		require.NoError(t, err)
		h := samr.NewPatchHierarchy(g)
		_, err = h.MakeNewPatchLevel(0, samr.IntVector{}, []samr.Box{
			samr.NewBox(2, samr.IntVector{0, 0}, samr.IntVector{1, 3}),
			samr.NewBox(2, samr.IntVector{2, 0}, samr.IntVector{3, 3}),
		})
		require.NoError(t, err)
		fw := NewFaceWeights("single", samr.AllRanks)
		rebuilt, err := fw.Build(h)
		require.NoError(t, err)
		assert.True(t, rebuilt)
		var leftArea, bottomArea float64
		for _, p := range h.PatchLevel(0).Patches {
			wgt := p.SideData(fw.Handle())
			wgt.EachFace(0, func(face samr.IntVector) {
				w := wgt.At(samr.NewSideIndex(face, 0, samr.Lower))
				assert.Equal(t, 0.5, w)
				if face[0] == 0 {
					leftArea += w
				}
			})
			wgt.EachFace(1, func(face samr.IntVector) {
				w := wgt.At(samr.NewSideIndex(face, 1, samr.Lower))
				assert.Equal(t, 0.25, w)
				if face[1] == 0 {
					bottomArea += w
				}
			})
		}
		assert.Equal(t, 2., leftArea)
		assert.Equal(t, 1., bottomArea)
	}
	{ // 3D
		h := newUnitHierarchy(t, 3, 4, utils.BCWall)
		fw := NewFaceWeights("single3d", samr.AllRanks)
		_, err := fw.Build(h)
		require.NoError(t, err)
		var area [3]float64
		for _, p := range h.PatchLevel(0).Patches {
			wgt := p.SideData(fw.Handle())
			for axis := 0; axis < 3; axis++ {
				wgt.EachFace(axis, func(face samr.IntVector) {
					w := wgt.At(samr.NewSideIndex(face, axis, samr.Lower))
					assert.Equal(t, 0.0625, w)
					if face[axis] == 4 {
						area[axis] += w
					}
				})
			}
		}
		assert.Equal(t, [3]float64{1, 1, 1}, area)
	}
}

// coveredFace reports whether a face of the given axis touches a cell of the
// covered block [lo, hi] on every axis
func coveredFace(face samr.IntVector, axis, dim, lo, hi int) bool {
	for d := 0; d < dim; d++ {
		top := hi
		if d == axis {
			top = hi + 1
		}
		if face[d] < lo || face[d] > top {
			return false
		}
	}
	return true
}

func TestFaceWeightsTwoLevel(t *testing.T) {
	for _, dim := range []int{2, 3} {
		var lo, hi samr.IntVector
		for d := 0; d < dim; d++ {
			lo[d], hi[d] = 4, 7 // Covers coarse cells [2,3]
		}
		h := newUnitHierarchy(t, dim, 8, utils.BCWall, samr.NewBox(dim, lo, hi))
		fw := NewFaceWeights("two_level", samr.AllRanks)
		_, err := fw.Build(h)
		require.NoError(t, err)
		var (
			coarseArea = 1. / 8
			fineArea   = 1. / 16
			zeroed     int
		)
		if dim == 3 {
			coarseArea *= 1. / 8
			fineArea *= 1. / 16
		}
		for _, p := range h.PatchLevel(0).Patches {
			wgt := p.SideData(fw.Handle())
			for axis := 0; axis < dim; axis++ {
				wgt.EachFace(axis, func(face samr.IntVector) {
					w := wgt.At(samr.NewSideIndex(face, axis, samr.Lower))
					if coveredFace(face, axis, dim, 2, 3) {
						assert.Equal(t, 0., w, "dim %d axis %d face %v", dim, axis, face)
						zeroed++
					} else {
						assert.Equal(t, coarseArea, w, "dim %d axis %d face %v", dim, axis, face)
					}
				})
			}
		}
		// The faces on both sides of the x patch seam at coarse index 4 are
		// stored twice
		if dim == 2 {
			assert.Equal(t, 2*3*2+2, zeroed)
		} else {
			assert.Equal(t, 3*3*2*2+2*2, zeroed)
		}
		for _, p := range h.PatchLevel(1).Patches {
			wgt := p.SideData(fw.Handle())
			for axis := 0; axis < dim; axis++ {
				wgt.EachFace(axis, func(face samr.IntVector) {
					assert.Equal(t, fineArea, wgt.At(samr.NewSideIndex(face, axis, samr.Lower)))
				})
			}
		}
	}
}

func TestFaceWeightsPeriodic(t *testing.T) {
	// The fine patch touches the upper x boundary, its image wraps onto the
	// lower boundary faces
	fine := samr.NewBox(2, samr.IntVector{12, 4}, samr.IntVector{15, 7})
	weightAt := func(bc utils.BCType, face samr.IntVector) float64 {
		h := newUnitHierarchy(t, 2, 8, bc, fine)
		fw := NewFaceWeights("periodic", samr.AllRanks)
		_, err := fw.Build(h)
		require.NoError(t, err)
		wgt := h.PatchLevel(0).Patches[0].SideData(fw.Handle())
		return wgt.At(samr.NewSideIndex(face, 0, samr.Lower))
	}
	assert.Equal(t, 0., weightAt(utils.BCPeriodic, samr.IntVector{0, 2}))
	assert.Equal(t, 0., weightAt(utils.BCPeriodic, samr.IntVector{0, 3}))
	assert.Equal(t, 0.125, weightAt(utils.BCPeriodic, samr.IntVector{0, 4}))
	assert.Equal(t, 0.125, weightAt(utils.BCPeriodic, samr.IntVector{1, 2}))
	assert.Equal(t, 0.125, weightAt(utils.BCWall, samr.IntVector{0, 2}))
}

func TestFaceWeightsCache(t *testing.T) {
	h := newUnitHierarchy(t, 2, 8, utils.BCWall)
	fw := NewFaceWeights("cache", samr.AllRanks)
	rebuilt, err := fw.Build(h)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	handle := fw.Handle()
	rebuilt, err = fw.Build(h)
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.True(t, fw.IsCurrent(h))

	// Regrid
	_, err = h.MakeNewPatchLevel(1, samr.IntVector{2, 2}, []samr.Box{
		samr.NewBox(2, samr.IntVector{0, 0}, samr.IntVector{3, 3})})
	require.NoError(t, err)
	assert.False(t, fw.IsCurrent(h))
	rebuilt, err = fw.Build(h)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, handle, fw.Handle())
	wgt := h.PatchLevel(0).Patches[0].SideData(handle)
	assert.Equal(t, 0., wgt.At(samr.NewSideIndex(samr.IntVector{0, 0}, 0, samr.Lower)))
	assert.True(t, h.PatchLevel(1).Patches[0].CheckAllocated(handle))

	fw.Release()
	assert.Equal(t, -1, fw.Handle())
	assert.False(t, h.PatchLevel(0).Patches[0].CheckAllocated(handle))
	_, ok := h.Variables().Lookup(handle)
	assert.False(t, ok)
}

func TestSideVolumeWeights(t *testing.T) {
	h := newUnitHierarchy(t, 2, 8, utils.BCWall,
		samr.NewBox(2, samr.IntVector{4, 4}, samr.IntVector{7, 7}))
	f := fillFields(t, h, uniformVelocity([3]float64{}), constantPressure(0))
	var total [2]float64
	for ln := 0; ln < h.NumberOfLevels(); ln++ {
		for _, p := range h.PatchLevel(ln).Patches {
			vol := p.SideData(f.VolumeWeight)
			// Lower faces of the patch cells integrate the covered volume once
			p.Box.Each(func(cell samr.IntVector) {
				for axis := 0; axis < 2; axis++ {
					total[axis] += vol.At(samr.NewSideIndex(cell, axis, samr.Lower))
				}
			})
		}
	}
	assert.InDelta(t, 1., total[0], 1.e-14)
	assert.InDelta(t, 1., total[1], 1.e-14)
	coarse := h.PatchLevel(0).Patches[0].SideData(f.VolumeWeight)
	// Upper faces of the covered block stay with the coarse cells above them
	assert.Equal(t, 1./64, coarse.At(samr.NewSideIndex(samr.IntVector{2, 4}, 1, samr.Lower)))
	assert.Equal(t, 0., coarse.At(samr.NewSideIndex(samr.IntVector{2, 3}, 1, samr.Lower)))

	cellIdx, err := h.Variables().RegisterVariable("cell", samr.CellCentered, 0)
	require.NoError(t, err)
	assert.Error(t, ComputeSideVolumeWeights(h, cellIdx, samr.AllRanks))
	assert.Error(t, ComputeSideVolumeWeights(h, 1000, samr.AllRanks))
}
