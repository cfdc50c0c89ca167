package forces

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ForceObject is the double buffered state of one tracked body. The Current
// fields hold the last completed step, the New fields the step being
// evaluated.
type ForceObject struct {
	StructureID    int
	StructureLevel int

	BoxXLowerCurrent, BoxXLowerNew r3.Vec
	BoxXUpperCurrent, BoxXUpperNew r3.Vec
	BoxUCurrent, BoxUNew           r3.Vec

	FCurrent, FNew       r3.Vec // Hydrodynamic force
	TCurrent, TNew       r3.Vec // Hydrodynamic torque about the box center
	PCurrent, PNew       r3.Vec // Structure momentum
	LCurrent, LNew       r3.Vec // Structure angular momentum
	PBoxCurrent, PBoxNew r3.Vec // Fluid momentum inside the box
	LBoxCurrent, LBoxNew r3.Vec // Fluid angular momentum inside the box
}

func (fo *ForceObject) promote() {
	fo.BoxXLowerCurrent = fo.BoxXLowerNew
	fo.BoxXUpperCurrent = fo.BoxXUpperNew
	fo.BoxUCurrent = fo.BoxUNew
	fo.FCurrent = fo.FNew
	fo.TCurrent = fo.TNew
	fo.PCurrent = fo.PNew
	fo.LCurrent = fo.LNew
	fo.PBoxCurrent = fo.PBoxNew
	fo.LBoxCurrent = fo.LBoxNew
}

// BoxCenterNew is the lever arm origin for torques and angular momenta
func (fo *ForceObject) BoxCenterNew() r3.Vec {
	return r3.Scale(0.5, r3.Add(fo.BoxXLowerNew, fo.BoxXUpperNew))
}

// body adds the per-step bookkeeping the evaluator needs on top of the
// public record
type body struct {
	ForceObject
	updated              bool
	updateCur, updateNew float64
}
