package ForceBalance

import (
	"github.com/notargets/ibforce/forces"
	"github.com/notargets/ibforce/samr"
)

// RegisterFields registers and allocates the velocity, pressure and volume
// weight fields the evaluator reads
func RegisterFields(h *samr.PatchHierarchy) (f forces.Fields, err error) {
	vdb := h.Variables()
	if f.Velocity, err = vdb.RegisterVariable("velocity", samr.SideCentered, 1); err != nil {
		return
	}
	if f.Pressure, err = vdb.RegisterVariable("pressure", samr.CellCentered, 1); err != nil {
		return
	}
	if f.VolumeWeight, err = vdb.RegisterVariable("volume_weight", samr.SideCentered, 0); err != nil {
		return
	}
	for _, idx := range []int{f.Velocity, f.Pressure} {
		if err = h.AllocatePatchData(idx, samr.AllRanks); err != nil {
			return
		}
	}
	err = forces.ComputeSideVolumeWeights(h, f.VolumeWeight, samr.AllRanks)
	return
}

// FillHierarchy samples flow at time t into the velocity and pressure fields
// of the patches owned by rank, ghost regions included
func FillHierarchy(h *samr.PatchHierarchy, f forces.Fields, flow FlowField, t float64, rank int) {
	for ln := 0; ln < h.NumberOfLevels(); ln++ {
		for _, patch := range h.PatchLevel(ln).LocalPatches(rank) {
			u := patch.SideData(f.Velocity)
			for axis := 0; axis < patch.Box.Dim; axis++ {
				u.EachFace(axis, func(face samr.IntVector) {
					si := samr.NewSideIndex(face, axis, samr.Lower)
					x := samr.VecFromArray(patch.FaceCenter(si))
					u.Set(si, samr.Component(flow.Velocity(x, t), axis))
				})
			}
			p := patch.CellData(f.Pressure)
			p.GhostBox().Each(func(i samr.IntVector) {
				p.Set(i, flow.Pressure(samr.VecFromArray(patch.CellCenter(i)), t))
			})
		}
	}
}
