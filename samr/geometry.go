package samr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/utils"
)

// GridGeometry describes the Cartesian domain and its coarsest index space
type GridGeometry struct {
	Dim        int
	XLower     r3.Vec
	XUpper     r3.Vec
	DomainBox  Box // Level zero index space
	Dx0        [3]float64
	Boundaries [3]utils.BCType
}

func NewGridGeometry(dim int, xLower, xUpper r3.Vec, cells IntVector,
	boundaries [3]utils.BCType) (g *GridGeometry, err error) {
	if dim < 2 || dim > utils.MaxDim {
		err = fmt.Errorf("grid dimension must be 2 or %d, have %d", utils.MaxDim, dim)
		return
	}
	g = &GridGeometry{
		Dim:        dim,
		XLower:     xLower,
		XUpper:     xUpper,
		DomainBox:  NewBox(dim, IntVector{}, cells.Sub(Uniform(dim, 1))),
		Boundaries: boundaries,
	}
	for d := 0; d < dim; d++ {
		if cells[d] < 1 {
			err = fmt.Errorf("need at least one cell along axis %d, have %d", d, cells[d])
			return nil, err
		}
		width := Component(xUpper, d) - Component(xLower, d)
		if width <= 0 {
			err = fmt.Errorf("domain upper corner must exceed lower corner along axis %d", d)
			return nil, err
		}
		g.Dx0[d] = width / float64(cells[d])
	}
	if dim == 2 {
		g.Dx0[2] = 1
	}
	return
}

// Dx is the grid spacing of a level with the given ratio to level zero
func (g *GridGeometry) Dx(ratio IntVector) (dx [3]float64) {
	dx = [3]float64{1, 1, 1}
	for d := 0; d < g.Dim; d++ {
		dx[d] = g.Dx0[d] / float64(ratio[d])
	}
	return
}

func (g *GridGeometry) IsPeriodic(axis int) bool {
	return g.Boundaries[axis] == utils.BCPeriodic
}

// PeriodicShift is the domain extent in cells at the given ratio along each
// periodic axis, zero along the others
func (g *GridGeometry) PeriodicShift(ratio IntVector) (shift IntVector) {
	for d := 0; d < g.Dim; d++ {
		if g.IsPeriodic(d) {
			shift[d] = g.DomainBox.NumberCells(d) * ratio[d]
		}
	}
	return
}

// BoxXLower is the physical lower corner of an index box at the given ratio
func (g *GridGeometry) BoxXLower(b Box, ratio IntVector) (x [3]float64) {
	dx := g.Dx(ratio)
	for d := 0; d < g.Dim; d++ {
		x[d] = Component(g.XLower, d) + float64(b.Lower[d])*dx[d]
	}
	return
}

// CellIndexOf converts a physical point to the index of the cell containing
// it at the given ratio. Points nearer the upper domain edge are measured
// from that edge so that a point exactly on it maps one past the last cell.
func CellIndexOf(X r3.Vec, g *GridGeometry, ratio IntVector) (idx IntVector) {
	var (
		domain = g.DomainBox.Refine(ratio)
		dx     = g.Dx(ratio)
	)
	for d := 0; d < g.Dim; d++ {
		dXLower := Component(X, d) - Component(g.XLower, d)
		dXUpper := Component(X, d) - Component(g.XUpper, d)
		if math.Abs(dXLower) <= math.Abs(dXUpper) {
			idx[d] = domain.Lower[d] + int(math.Floor(dXLower/dx[d]))
		} else {
			idx[d] = domain.Upper[d] + int(math.Floor(dXUpper/dx[d])) + 1
		}
	}
	return
}

// Component returns coordinate d of v
func Component(v r3.Vec, d int) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("axis %d out of range", d))
}

// WithComponent returns v with coordinate d replaced
func WithComponent(v r3.Vec, d int, val float64) r3.Vec {
	switch d {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	default:
		panic(fmt.Sprintf("axis %d out of range", d))
	}
	return v
}

func VecFromArray(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

func ArrayFromVec(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
