package forces

import (
	"fmt"

	"github.com/notargets/ibforce/samr"
)

// FaceWeights owns the face area field used by the surface traction
// integral. Each face normal to axis d carries cellVolume/dx[d], zeroed where
// a finer level covers it so that every physical face is counted once across
// the hierarchy.
type FaceWeights struct {
	Name      string
	rank      int
	handle    int
	built     bool
	hierarchy *samr.PatchHierarchy
	version   int
}

func NewFaceWeights(name string, rank int) *FaceWeights {
	return &FaceWeights{
		Name:   fmt.Sprintf("%s::face_wgt::%d", name, rank),
		rank:   rank,
		handle: -1,
	}
}

// Handle is the patch data index of the field, -1 before the first build
func (fw *FaceWeights) Handle() int { return fw.handle }

// IsCurrent reports whether the field matches the structure of h
func (fw *FaceWeights) IsCurrent(h *samr.PatchHierarchy) bool {
	return fw.built && fw.hierarchy == h && fw.version == h.StructureVersion()
}

// Build recomputes the field on the patches owned by the rank. It does nothing
// when the hierarchy structure has not changed since the last build.
func (fw *FaceWeights) Build(h *samr.PatchHierarchy) (rebuilt bool, err error) {
	if fw.IsCurrent(h) {
		return
	}
	if fw.built && fw.hierarchy != h {
		fw.Release()
	}
	if fw.handle, err = h.Variables().RegisterVariable(fw.Name, samr.SideCentered, 0); err != nil {
		return
	}
	// Patches surviving a regrid still hold the previous weights
	h.DeallocatePatchData(fw.handle, fw.rank)
	if err = h.AllocatePatchData(fw.handle, fw.rank); err != nil {
		return
	}
	finest := h.FinestLevelNumber()
	for ln := 0; ln <= finest; ln++ {
		level := h.PatchLevel(ln)
		var covered []samr.Box
		if ln < finest {
			covered = coveredBoxes(h, ln)
		}
		for _, p := range level.LocalPatches(fw.rank) {
			var (
				wgt = p.SideData(fw.handle)
				vol = p.CellVolume()
			)
			for axis := 0; axis < p.Box.Dim; axis++ {
				wgt.FillAxis(axis, vol/p.Geometry.Dx[axis])
			}
			grown := p.Box.Grow(1)
			for _, cb := range covered {
				trim := grown.Intersect(cb)
				if !trim.Empty() {
					wgt.FillAll(0, trim)
				}
			}
		}
	}
	fw.built = true
	fw.hierarchy = h
	fw.version = h.StructureVersion()
	return true, nil
}

// Release frees the field and its handle
func (fw *FaceWeights) Release() {
	if fw.hierarchy == nil || fw.handle < 0 {
		return
	}
	fw.hierarchy.DeallocatePatchData(fw.handle, fw.rank)
	fw.hierarchy.Variables().RemovePatchDataIndex(fw.handle)
	fw.handle = -1
	fw.built = false
	fw.hierarchy = nil
}

// coveredBoxes returns the boxes of level ln+1 coarsened into the index space
// of level ln, followed by one image shifted each way along every periodic
// axis.
func coveredBoxes(h *samr.PatchHierarchy, ln int) (covered []samr.Box) {
	var (
		g      = h.Geometry
		level  = h.PatchLevel(ln)
		finer  = h.PatchLevel(ln + 1)
		shifts = g.PeriodicShift(level.Ratio)
	)
	for _, cb := range finer.Boxes().Coarsen(finer.RatioToCoarser) {
		covered = append(covered, cb)
		for axis := 0; axis < g.Dim; axis++ {
			if shifts[axis] == 0 {
				continue
			}
			var shift samr.IntVector
			shift[axis] = shifts[axis]
			covered = append(covered, cb.Shift(shift))
			shift[axis] = -shifts[axis]
			covered = append(covered, cb.Shift(shift))
		}
	}
	return
}

// ComputeSideVolumeWeights fills the side centered field idx with the cell
// volume on every face owned by rank, zeroing the lower faces of cells covered
// by a finer level. Summing weight times a face quantity over the lower faces
// of a region then integrates it over the region's volume once.
func ComputeSideVolumeWeights(h *samr.PatchHierarchy, idx, rank int) (err error) {
	desc, ok := h.Variables().Lookup(idx)
	if !ok {
		return fmt.Errorf("patch data index %d is not registered", idx)
	}
	if desc.Centering != samr.SideCentered {
		return fmt.Errorf("volume weights need side centered data, %q is %s centered", desc.Name, desc.Centering)
	}
	if err = h.AllocatePatchData(idx, rank); err != nil {
		return
	}
	finest := h.FinestLevelNumber()
	for ln := 0; ln <= finest; ln++ {
		var covered []samr.Box
		if ln < finest {
			covered = coveredBoxes(h, ln)
		}
		for _, p := range h.PatchLevel(ln).LocalPatches(rank) {
			vol := p.SideData(idx)
			vol.Fill(p.CellVolume())
			for _, cb := range covered {
				vol.FillLowerFaces(0, cb)
			}
		}
	}
	return
}
