package samr

import (
	"fmt"

	"github.com/notargets/ibforce/utils"
)

// AllRanks selects every patch of a level regardless of its owner
const AllRanks = -1

type PatchGeometry struct {
	Dx     [3]float64
	XLower [3]float64
}

type Patch struct {
	Number      int
	LevelNumber int
	Box         Box
	Owner       int
	Geometry    PatchGeometry
	data        map[int]PatchData
}

// CellVolume is the product of the grid spacings over the active axes
func (p *Patch) CellVolume() (vol float64) {
	vol = 1
	for d := 0; d < p.Box.Dim; d++ {
		vol *= p.Geometry.Dx[d]
	}
	return
}

func (p *Patch) CheckAllocated(idx int) bool {
	_, ok := p.data[idx]
	return ok
}

func (p *Patch) PatchData(idx int) PatchData {
	pd, ok := p.data[idx]
	if !ok {
		panic(fmt.Sprintf("patch %d on level %d has no data for index %d", p.Number, p.LevelNumber, idx))
	}
	return pd
}

func (p *Patch) SideData(idx int) *SideData {
	sd, ok := p.PatchData(idx).(*SideData)
	if !ok {
		panic(fmt.Sprintf("patch data %d is not side centered", idx))
	}
	return sd
}

func (p *Patch) CellData(idx int) *CellData {
	cd, ok := p.PatchData(idx).(*CellData)
	if !ok {
		panic(fmt.Sprintf("patch data %d is not cell centered", idx))
	}
	return cd
}

// FaceCenter is the physical location of a face of the patch
func (p *Patch) FaceCenter(si SideIndex) (x [3]float64) {
	fi := si.FaceIndex()
	for d := 0; d < p.Box.Dim; d++ {
		offset := float64(fi[d] - p.Box.Lower[d])
		if d != si.Axis {
			offset += 0.5
		}
		x[d] = p.Geometry.XLower[d] + offset*p.Geometry.Dx[d]
	}
	return
}

// CellCenter is the physical location of a cell center of the patch
func (p *Patch) CellCenter(i IntVector) (x [3]float64) {
	for d := 0; d < p.Box.Dim; d++ {
		x[d] = p.Geometry.XLower[d] + (float64(i[d]-p.Box.Lower[d])+0.5)*p.Geometry.Dx[d]
	}
	return
}

type PatchLevel struct {
	Number         int
	Ratio          IntVector // Ratio to level zero
	RatioToCoarser IntVector
	Patches        []*Patch
}

func (l *PatchLevel) Boxes() (bl BoxList) {
	bl = make(BoxList, len(l.Patches))
	for i, p := range l.Patches {
		bl[i] = p.Box
	}
	return
}

// LocalPatches returns the patches owned by rank, or all of them for AllRanks
func (l *PatchLevel) LocalPatches(rank int) (patches []*Patch) {
	if rank == AllRanks {
		return l.Patches
	}
	for _, p := range l.Patches {
		if p.Owner == rank {
			patches = append(patches, p)
		}
	}
	return
}

// PatchHierarchy is an ordered set of nested levels. Every structural change
// (new level, removed level, new patch ownership) bumps StructureVersion so
// cached per-hierarchy data can tell it is stale.
type PatchHierarchy struct {
	Geometry  *GridGeometry
	levels    []*PatchLevel
	version   int
	variables *VariableDatabase
}

func NewPatchHierarchy(g *GridGeometry) *PatchHierarchy {
	return &PatchHierarchy{
		Geometry:  g,
		variables: NewVariableDatabase(),
	}
}

func (h *PatchHierarchy) Variables() *VariableDatabase { return h.variables }
func (h *PatchHierarchy) StructureVersion() int        { return h.version }
func (h *PatchHierarchy) NumberOfLevels() int          { return len(h.levels) }
func (h *PatchHierarchy) FinestLevelNumber() int       { return len(h.levels) - 1 }

func (h *PatchHierarchy) PatchLevel(ln int) *PatchLevel {
	if ln < 0 || ln >= len(h.levels) {
		panic(fmt.Sprintf("level %d outside hierarchy with %d levels", ln, len(h.levels)))
	}
	return h.levels[ln]
}

// MakeNewPatchLevel replaces level ln (and drops every finer level) with
// patches over boxes given in the index space of level ln. Level zero uses a
// ratio of one. Boxes of a finer level must nest inside the next coarser
// level.
func (h *PatchHierarchy) MakeNewPatchLevel(ln int, ratioToCoarser IntVector, boxes []Box) (level *PatchLevel, err error) {
	var (
		g   = h.Geometry
		dim = g.Dim
	)
	if ln < 0 || ln > len(h.levels) {
		err = fmt.Errorf("cannot create level %d in a hierarchy with %d levels", ln, len(h.levels))
		return
	}
	level = &PatchLevel{Number: ln}
	if ln == 0 {
		level.Ratio = Uniform(dim, 1)
		level.RatioToCoarser = Uniform(dim, 1)
	} else {
		for d := 0; d < dim; d++ {
			if ratioToCoarser[d] < 1 {
				err = fmt.Errorf("level %d: refinement ratio must be positive along axis %d", ln, d)
				return nil, err
			}
		}
		level.RatioToCoarser = ratioToCoarser
		level.Ratio = h.levels[ln-1].Ratio.Mul(ratioToCoarser)
	}
	domain := g.DomainBox.Refine(level.Ratio)
	var coarser BoxList
	if ln > 0 {
		coarser = h.levels[ln-1].Boxes()
	}
	dx := g.Dx(level.Ratio)
	for i, b := range boxes {
		b.Dim = dim
		if b.Empty() {
			err = fmt.Errorf("level %d: box %d is empty", ln, i)
			return nil, err
		}
		if !domain.ContainsBox(b) {
			err = fmt.Errorf("level %d: box %s outside domain %s", ln, b, domain)
			return nil, err
		}
		if ln > 0 {
			cb := b.Coarsen(level.RatioToCoarser)
			if coarser.CoveredCells(cb) != cb.Size() {
				err = fmt.Errorf("level %d: box %s not nested in level %d", ln, b, ln-1)
				return nil, err
			}
		}
		level.Patches = append(level.Patches, &Patch{
			Number:      i,
			LevelNumber: ln,
			Box:         b,
			Geometry: PatchGeometry{
				Dx:     dx,
				XLower: g.BoxXLower(b, level.Ratio),
			},
			data: make(map[int]PatchData),
		})
	}
	h.levels = append(h.levels[:ln], level)
	h.version++
	return
}

// RemoveFinerLevels drops every level finer than ln
func (h *PatchHierarchy) RemoveFinerLevels(ln int) {
	if ln+1 < len(h.levels) {
		h.levels = h.levels[:ln+1]
		h.version++
	}
}

// AssignOwners distributes the patches of every level over NP workers in
// contiguous blocks
func (h *PatchHierarchy) AssignOwners(NP int) {
	for _, level := range h.levels {
		pm := utils.NewPartitionMap(NP, len(level.Patches))
		for k, p := range level.Patches {
			bn, _, _ := pm.GetBucket(k)
			p.Owner = bn
		}
	}
	h.version++
}

// AllocatePatchData allocates idx on the patches of rank across all levels
func (h *PatchHierarchy) AllocatePatchData(idx, rank int) (err error) {
	desc, ok := h.variables.Lookup(idx)
	if !ok {
		return fmt.Errorf("patch data index %d is not registered", idx)
	}
	for _, level := range h.levels {
		for _, p := range level.LocalPatches(rank) {
			if !p.CheckAllocated(idx) {
				p.data[idx] = desc.allocate(p.Box)
			}
		}
	}
	return
}

func (h *PatchHierarchy) DeallocatePatchData(idx, rank int) {
	for _, level := range h.levels {
		for _, p := range level.LocalPatches(rank) {
			delete(p.data, idx)
		}
	}
}
