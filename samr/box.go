// Package samr holds the block-structured adaptive mesh hierarchy consumed by
// the force evaluator: index boxes, patches, levels, face and cell centered
// patch data and the variable registry that hands out patch data handles.
//
// Index boxes are cell centered and inclusive on both ends. Only the first
// Dim components of an IntVector are meaningful; 2D hierarchies leave the
// third component at zero.
package samr

import (
	"fmt"
)

type IntVector [3]int

func Unit(axis int) (iv IntVector) {
	iv[axis] = 1
	return
}

func Uniform(dim, val int) (iv IntVector) {
	for d := 0; d < dim; d++ {
		iv[d] = val
	}
	return
}

func (iv IntVector) Add(o IntVector) IntVector {
	return IntVector{iv[0] + o[0], iv[1] + o[1], iv[2] + o[2]}
}

func (iv IntVector) Sub(o IntVector) IntVector {
	return IntVector{iv[0] - o[0], iv[1] - o[1], iv[2] - o[2]}
}

func (iv IntVector) Mul(o IntVector) IntVector {
	return IntVector{iv[0] * o[0], iv[1] * o[1], iv[2] * o[2]}
}

// Scale multiplies the first dim components by s
func (iv IntVector) Scale(dim, s int) (r IntVector) {
	for d := 0; d < dim; d++ {
		r[d] = iv[d] * s
	}
	return
}

type Box struct {
	Dim          int
	Lower, Upper IntVector
}

func NewBox(dim int, lower, upper IntVector) Box {
	if dim < 1 || dim > 3 {
		panic(fmt.Sprintf("box dimension %d out of range [1,3]", dim))
	}
	return Box{Dim: dim, Lower: lower, Upper: upper}
}

func (b Box) String() string {
	return fmt.Sprintf("[%v,%v]", b.Lower[:b.Dim], b.Upper[:b.Dim])
}

func (b Box) Empty() bool {
	if b.Dim == 0 {
		return true
	}
	for d := 0; d < b.Dim; d++ {
		if b.Upper[d] < b.Lower[d] {
			return true
		}
	}
	return false
}

func (b Box) NumberCells(axis int) int {
	n := b.Upper[axis] - b.Lower[axis] + 1
	if n < 0 {
		return 0
	}
	return n
}

func (b Box) Size() (n int) {
	if b.Empty() {
		return 0
	}
	n = 1
	for d := 0; d < b.Dim; d++ {
		n *= b.NumberCells(d)
	}
	return
}

// Intersect is the SAMRAI box product b * o
func (b Box) Intersect(o Box) (r Box) {
	r.Dim = b.Dim
	for d := 0; d < b.Dim; d++ {
		r.Lower[d] = max(b.Lower[d], o.Lower[d])
		r.Upper[d] = min(b.Upper[d], o.Upper[d])
	}
	return
}

func (b Box) Intersects(o Box) bool {
	return !b.Intersect(o).Empty()
}

func (b Box) Contains(i IntVector) bool {
	for d := 0; d < b.Dim; d++ {
		if i[d] < b.Lower[d] || i[d] > b.Upper[d] {
			return false
		}
	}
	return true
}

func (b Box) ContainsBox(o Box) bool {
	if o.Empty() {
		return true
	}
	return b.Contains(o.Lower) && b.Contains(o.Upper)
}

func (b Box) Grow(g int) Box {
	r := b
	for d := 0; d < b.Dim; d++ {
		r.Lower[d] -= g
		r.Upper[d] += g
	}
	return r
}

func (b Box) Shift(offset IntVector) Box {
	r := b
	for d := 0; d < b.Dim; d++ {
		r.Lower[d] += offset[d]
		r.Upper[d] += offset[d]
	}
	return r
}

func (b Box) Coarsen(ratio IntVector) Box {
	r := b
	for d := 0; d < b.Dim; d++ {
		r.Lower[d] = floorDiv(b.Lower[d], ratio[d])
		r.Upper[d] = floorDiv(b.Upper[d], ratio[d])
	}
	return r
}

func (b Box) Refine(ratio IntVector) Box {
	r := b
	for d := 0; d < b.Dim; d++ {
		r.Lower[d] = b.Lower[d] * ratio[d]
		r.Upper[d] = (b.Upper[d]+1)*ratio[d] - 1
	}
	return r
}

// SideBox is the index box of the faces normal to axis owned by the cells of b
func (b Box) SideBox(axis int) Box {
	r := b
	r.Upper[axis]++
	return r
}

// Offset returns the linear position of i in b, first axis fastest
func (b Box) Offset(i IntVector) (ind int) {
	stride := 1
	for d := 0; d < b.Dim; d++ {
		ind += (i[d] - b.Lower[d]) * stride
		stride *= b.NumberCells(d)
	}
	return
}

// Each visits every index of b, first axis fastest
func (b Box) Each(fn func(i IntVector)) {
	if b.Empty() {
		return
	}
	var i IntVector
	switch b.Dim {
	case 1:
		for i[0] = b.Lower[0]; i[0] <= b.Upper[0]; i[0]++ {
			fn(i)
		}
	case 2:
		for i[1] = b.Lower[1]; i[1] <= b.Upper[1]; i[1]++ {
			for i[0] = b.Lower[0]; i[0] <= b.Upper[0]; i[0]++ {
				fn(i)
			}
		}
	case 3:
		for i[2] = b.Lower[2]; i[2] <= b.Upper[2]; i[2]++ {
			for i[1] = b.Lower[1]; i[1] <= b.Upper[1]; i[1]++ {
				for i[0] = b.Lower[0]; i[0] <= b.Upper[0]; i[0]++ {
					fn(i)
				}
			}
		}
	}
}

type BoxList []Box

func (bl BoxList) Coarsen(ratio IntVector) (r BoxList) {
	r = make(BoxList, len(bl))
	for i, b := range bl {
		r[i] = b.Coarsen(ratio)
	}
	return
}

func (bl BoxList) Refine(ratio IntVector) (r BoxList) {
	r = make(BoxList, len(bl))
	for i, b := range bl {
		r[i] = b.Refine(ratio)
	}
	return
}

// CoveredCells counts the cells of b covered by the list, assuming the list
// boxes do not overlap each other
func (bl BoxList) CoveredCells(b Box) (n int) {
	for _, lb := range bl {
		n += b.Intersect(lb).Size()
	}
	return
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
