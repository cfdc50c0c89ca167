package samr

import (
	"fmt"
)

type Centering uint8

const (
	CellCentered Centering = iota
	SideCentered
)

func (c Centering) String() string {
	switch c {
	case CellCentered:
		return "cell"
	case SideCentered:
		return "side"
	}
	return "unknown"
}

type PatchData interface {
	Box() Box
	GhostWidth() int
	Centering() Centering
}

// CellData stores one value per cell of the patch box grown by the ghost width
type CellData struct {
	box        Box
	ghostWidth int
	ghostBox   Box
	data       []float64
}

func NewCellData(box Box, ghostWidth int) *CellData {
	gb := box.Grow(ghostWidth)
	return &CellData{
		box:        box,
		ghostWidth: ghostWidth,
		ghostBox:   gb,
		data:       make([]float64, gb.Size()),
	}
}

func (cd *CellData) Box() Box             { return cd.box }
func (cd *CellData) GhostBox() Box        { return cd.ghostBox }
func (cd *CellData) GhostWidth() int      { return cd.ghostWidth }
func (cd *CellData) Centering() Centering { return CellCentered }

func (cd *CellData) offset(i IntVector) int {
	if !cd.ghostBox.Contains(i) {
		panic(fmt.Sprintf("cell index %v outside cell data box %s", i[:cd.box.Dim], cd.ghostBox))
	}
	return cd.ghostBox.Offset(i)
}

func (cd *CellData) At(i IntVector) float64 { return cd.data[cd.offset(i)] }

func (cd *CellData) Set(i IntVector, val float64) { cd.data[cd.offset(i)] = val }

func (cd *CellData) Fill(val float64) {
	for i := range cd.data {
		cd.data[i] = val
	}
}

// FillBox sets every stored cell inside box
func (cd *CellData) FillBox(val float64, box Box) {
	cd.ghostBox.Intersect(box).Each(func(i IntVector) {
		cd.data[cd.ghostBox.Offset(i)] = val
	})
}

type Side uint8

const (
	Lower Side = iota
	Upper
)

// SideIndex names the face of Cell normal to Axis on the given Side
type SideIndex struct {
	Cell IntVector
	Axis int
	Side Side
}

func NewSideIndex(cell IntVector, axis int, side Side) SideIndex {
	return SideIndex{Cell: cell, Axis: axis, Side: side}
}

// FaceIndex is the index of the face in the side box of its axis
func (si SideIndex) FaceIndex() IntVector {
	if si.Side == Upper {
		return si.Cell.Add(Unit(si.Axis))
	}
	return si.Cell
}

// SideData stores one value per face, with a separate array per face normal
// axis. The array for axis d spans SideBox(d) of the patch box grown by the
// ghost width.
type SideData struct {
	box        Box
	ghostWidth int
	arrayBoxes [3]Box
	data       [3][]float64
}

func NewSideData(box Box, ghostWidth int) *SideData {
	sd := &SideData{
		box:        box,
		ghostWidth: ghostWidth,
	}
	for axis := 0; axis < box.Dim; axis++ {
		sd.arrayBoxes[axis] = box.Grow(ghostWidth).SideBox(axis)
		sd.data[axis] = make([]float64, sd.arrayBoxes[axis].Size())
	}
	return sd
}

func (sd *SideData) Box() Box             { return sd.box }
func (sd *SideData) GhostWidth() int      { return sd.ghostWidth }
func (sd *SideData) Centering() Centering { return SideCentered }

func (sd *SideData) ArrayBox(axis int) Box { return sd.arrayBoxes[axis] }

func (sd *SideData) offset(si SideIndex) int {
	var (
		fi = si.FaceIndex()
		ab = sd.arrayBoxes[si.Axis]
	)
	if si.Axis >= sd.box.Dim || !ab.Contains(fi) {
		panic(fmt.Sprintf("face %v axis %d outside side data box %s", fi[:sd.box.Dim], si.Axis, ab))
	}
	return ab.Offset(fi)
}

func (sd *SideData) At(si SideIndex) float64 { return sd.data[si.Axis][sd.offset(si)] }

func (sd *SideData) Set(si SideIndex, val float64) { sd.data[si.Axis][sd.offset(si)] = val }

// FillAxis sets every stored face normal to axis
func (sd *SideData) FillAxis(axis int, val float64) {
	for i := range sd.data[axis] {
		sd.data[axis][i] = val
	}
}

func (sd *SideData) Fill(val float64) {
	for axis := 0; axis < sd.box.Dim; axis++ {
		sd.FillAxis(axis, val)
	}
}

// FillAll sets every stored face of every cell in box, including the upper
// faces of the last cells along each axis
func (sd *SideData) FillAll(val float64, box Box) {
	for axis := 0; axis < sd.box.Dim; axis++ {
		ab := sd.arrayBoxes[axis]
		ab.Intersect(box.SideBox(axis)).Each(func(i IntVector) {
			sd.data[axis][ab.Offset(i)] = val
		})
	}
}

// EachFace visits every stored face normal to axis with its face index
func (sd *SideData) EachFace(axis int, fn func(face IntVector)) {
	sd.arrayBoxes[axis].Each(fn)
}

// FillLowerFaces sets the faces owned as lower faces by the cells in box, so
// the upper faces along the box edge keep their values
func (sd *SideData) FillLowerFaces(val float64, box Box) {
	for axis := 0; axis < sd.box.Dim; axis++ {
		ab := sd.arrayBoxes[axis]
		ab.Intersect(box).Each(func(i IntVector) {
			sd.data[axis][ab.Offset(i)] = val
		})
	}
}
