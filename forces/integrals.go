package forces

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/samr"
)

// integrationBox is the new time control volume in the index space of a level
func integrationBox(g *samr.GridGeometry, ratio samr.IntVector, fo *ForceObject) samr.Box {
	return samr.NewBox(g.Dim,
		samr.CellIndexOf(fo.BoxXLowerNew, g, ratio),
		samr.CellIndexOf(fo.BoxXUpperNew, g, ratio))
}

// lever is the arm from the box center to x, restricted to the active axes
func lever(x [3]float64, center r3.Vec, dim int) (r r3.Vec) {
	for d := 0; d < dim; d++ {
		r = samr.WithComponent(r, d, x[d]-samr.Component(center, d))
	}
	return
}

// momentumIntegral sums rho*vol*u over the lower faces of every cell in the
// control volume, along with the matching angular momentum about the box
// center, on the patches owned by this worker.
func (e *Evaluator) momentumIntegral(fo *ForceObject, f Fields, h *samr.PatchHierarchy,
	coarsest, finest int) (pBox, lBox r3.Vec) {
	var (
		g      = h.Geometry
		dim    = g.Dim
		center = fo.BoxCenterNew()
		p      [3]float64
	)
	for ln := finest; ln >= coarsest; ln-- {
		level := h.PatchLevel(ln)
		ib := integrationBox(g, level.Ratio, fo)
		for _, patch := range level.LocalPatches(e.rank) {
			trim := patch.Box.Intersect(ib)
			if trim.Empty() {
				continue
			}
			var (
				u   = patch.SideData(f.Velocity)
				vol = patch.SideData(f.VolumeWeight)
			)
			trim.Each(func(cell samr.IntVector) {
				for axis := 0; axis < dim; axis++ {
					si := samr.NewSideIndex(cell, axis, samr.Lower)
					m := e.Rho * vol.At(si) * u.At(si)
					p[axis] += m
					r := lever(patch.FaceCenter(si), center, dim)
					lBox = r3.Add(lBox, r3.Cross(r, samr.WithComponent(r3.Vec{}, axis, m)))
				}
			})
		}
	}
	pBox = samr.VecFromArray(p)
	return
}

// tractionIntegral sums the pressure, convective and viscous traction over
// the faces of the control volume, with the matching torque about the box
// center, on the patches owned by this worker.
func (e *Evaluator) tractionIntegral(fo *ForceObject, f Fields, h *samr.PatchHierarchy,
	coarsest, finest int) (trac, torque r3.Vec) {
	var (
		g      = h.Geometry
		dim    = g.Dim
		center = fo.BoxCenterNew()
		boxU   = samr.ArrayFromVec(fo.BoxUNew)
		rho    = e.Rho
		mu     = e.Mu
		t      [3]float64
	)
	for ln := finest; ln >= coarsest; ln-- {
		level := h.PatchLevel(ln)
		ib := integrationBox(g, level.Ratio, fo)
		dx := g.Dx(level.Ratio)
		for _, patch := range level.LocalPatches(e.rank) {
			if !patch.Box.Intersects(ib) {
				continue
			}
			var (
				u   = patch.SideData(f.Velocity)
				p   = patch.CellData(f.Pressure)
				wgt = patch.SideData(e.faceWeights.Handle())
			)
			// uL samples component d of the velocity on the lower face of cell
			uL := func(cell samr.IntVector, d int) float64 {
				return u.At(samr.NewSideIndex(cell, d, samr.Lower))
			}
			for axis := 0; axis < dim; axis++ {
				for _, side := range []samr.Side{samr.Lower, samr.Upper} {
					bb := ib
					n, nInt := -1., -1
					if side == samr.Upper {
						bb.Lower[axis] = ib.Upper[axis]
						n, nInt = 1., 1
					} else {
						bb.Upper[axis] = ib.Lower[axis]
					}
					trim := bb.Intersect(patch.Box)
					if trim.Empty() {
						continue
					}
					var normal samr.IntVector
					normal[axis] = nInt
					trim.Each(func(cell samr.IntVector) {
						var (
							nbr   = cell.Add(normal)
							bdry  = samr.NewSideIndex(cell, axis, side)
							dA    = wgt.At(bdry)
							uf    [3]float64
							dTrac [3]float64
						)
						// Pressure
						dTrac[axis] -= 0.5 * n * (p.At(cell) + p.At(nbr)) * dA

						// Convective, the normal component sampled on the boundary face
						for d := 0; d < dim; d++ {
							if d == axis {
								uf[d] = u.At(bdry)
								continue
							}
							ed := samr.Unit(d)
							uf[d] = 0.25 * (uL(cell, d) + uL(cell.Add(ed), d) + uL(nbr, d) + uL(nbr.Add(ed), d))
						}
						// Relative to the new box velocity, the one the box moves with over the step
						flux := n * (uf[axis] - boxU[axis])
						for d := 0; d < dim; d++ {
							dTrac[d] -= rho * flux * uf[d] * dA
						}

						// Viscous
						for d := 0; d < dim; d++ {
							var v float64
							if d == axis {
								v = n * (2 * mu) / (2 * dx[axis]) * (uL(nbr, axis) - uL(cell, axis))
							} else {
								ed := samr.Unit(d)
								v = mu/(2*dx[d])*(uL(cell.Add(ed), axis)-uL(cell.Sub(ed), axis)) +
									mu*n/(2*dx[axis])*(uL(nbr, d)+uL(nbr.Add(ed), d)-uL(cell, d)-uL(cell.Add(ed), d))
							}
							dTrac[d] += n * v * dA
						}

						for d := 0; d < dim; d++ {
							t[d] += dTrac[d]
						}
						r := lever(patch.FaceCenter(bdry), center, dim)
						torque = r3.Add(torque, r3.Cross(r, samr.VecFromArray(dTrac)))
					})
				}
			}
		}
	}
	trac = samr.VecFromArray(t)
	return
}
