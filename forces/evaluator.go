// Package forces evaluates the hydrodynamic force and torque on immersed
// bodies with a moving control volume. Each body is enclosed by an axis
// aligned box; the force follows from the rate of change of fluid momentum in
// the box, the change of the body's own momentum and the traction integrated
// over the box surface.
package forces

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/restart"
	"github.com/notargets/ibforce/samr"
	"github.com/notargets/ibforce/utils"
)

// Fields holds the patch data handles read by ComputeHydrodynamicForce
type Fields struct {
	Velocity     int // Side centered, ghost width >= 1
	Pressure     int // Cell centered, ghost width >= 1
	VolumeWeight int // Side centered, see ComputeSideVolumeWeights
}

type Evaluator struct {
	Name        string
	Rho, Mu     float64
	reducer     utils.Reducer
	rank        int
	rankSet     bool
	restart     *restart.Manager
	register    bool
	verbose     bool
	faceWeights *FaceWeights
	bodies      map[int]*body
}

type Option func(e *Evaluator)

func WithReducer(r utils.Reducer) Option {
	return func(e *Evaluator) { e.reducer = r }
}

// WithRank restricts the evaluator to patches owned by rank. Without it the
// rank of the reducer is used, or every patch for a single worker.
func WithRank(rank int) Option {
	return func(e *Evaluator) {
		e.rank = rank
		e.rankSet = true
	}
}

// WithRestartManager reads body state from m when it holds a restarted run.
// With register set the evaluator also writes its state into m's checkpoints;
// only one of a set of cooperating workers needs to.
func WithRestartManager(m *restart.Manager, register bool) Option {
	return func(e *Evaluator) {
		e.restart = m
		e.register = register
	}
}

func WithVerbose(verbose bool) Option {
	return func(e *Evaluator) { e.verbose = verbose }
}

func NewEvaluator(name string, rho, mu float64, opts ...Option) (e *Evaluator, err error) {
	e = &Evaluator{
		Name:    name,
		Rho:     rho,
		Mu:      mu,
		reducer: utils.SerialReducer{},
		bodies:  make(map[int]*body),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.rankSet {
		e.rank = samr.AllRanks
		if e.reducer.Size() > 1 {
			e.rank = e.reducer.Rank()
		}
	}
	if e.restart != nil && e.register {
		if err = e.restart.RegisterRestartItem(name, e); err != nil {
			return nil, err
		}
	}
	e.faceWeights = NewFaceWeights(name, e.rank)
	return
}

// Close releases the face weight field and the checkpoint registration
func (e *Evaluator) Close() {
	e.faceWeights.Release()
	if e.restart != nil && e.register {
		e.restart.UnregisterRestartItem(e.Name)
	}
}

func (e *Evaluator) FaceWeights() *FaceWeights { return e.faceWeights }

func (e *Evaluator) Rank() int { return e.rank }

// StructureIDs returns the registered ids in ascending order
func (e *Evaluator) StructureIDs() (ids []int) {
	ids = make([]int, 0, len(e.bodies))
	for id := range e.bodies {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return
}

// RegisterStructure starts tracking body id with its control volume box and
// box velocity. A restarted run takes the whole state from the checkpoint
// instead.
func (e *Evaluator) RegisterStructure(id, level int, boxVel, xLower, xUpper r3.Vec) (err error) {
	if _, ok := e.bodies[id]; ok {
		return fmt.Errorf("%w: structure %d in %s", ErrDuplicateStructure, id, e.Name)
	}
	b := &body{ForceObject: ForceObject{StructureID: id, StructureLevel: level}}
	if e.restart != nil && e.restart.IsFromRestart() {
		if err = e.getFromRestart(&b.ForceObject); err != nil {
			return
		}
	} else {
		b.BoxXLowerCurrent, b.BoxXLowerNew = xLower, xLower
		b.BoxXUpperCurrent, b.BoxXUpperNew = xUpper, xUpper
		b.BoxUCurrent, b.BoxUNew = boxVel, boxVel
	}
	e.bodies[id] = b
	return
}

// UpdateStructureDomain moves the control volume of id with boxVelNew over
// the interval and records the structure momenta at newTime. The level is
// accepted for symmetry with RegisterStructure and not used.
func (e *Evaluator) UpdateStructureDomain(id, level int, currentTime, newTime float64,
	boxVelNew, pNew, lNew r3.Vec) (err error) {
	b, ok := e.bodies[id]
	if !ok {
		return fmt.Errorf("%w: structure %d in %s", ErrUnknownStructure, id, e.Name)
	}
	if !(newTime > currentTime) {
		return fmt.Errorf("%w: [%g, %g] for structure %d", ErrInvalidTimeInterval, currentTime, newTime, id)
	}
	dt := newTime - currentTime
	b.BoxUNew = boxVelNew
	b.BoxXLowerNew = r3.Add(b.BoxXLowerCurrent, r3.Scale(dt, boxVelNew))
	b.BoxXUpperNew = r3.Add(b.BoxXUpperCurrent, r3.Scale(dt, boxVelNew))
	b.PNew = pNew
	b.LNew = lNew
	b.updated = true
	b.updateCur, b.updateNew = currentTime, newTime
	return
}

// ComputeHydrodynamicForce evaluates FNew and TNew for every body over the
// levels [coarsest, finest]. Every worker sharing the reducer must make the
// same call, as each body issues collective sums in ascending id order.
//
// Every body must have been moved with UpdateStructureDomain for exactly this
// interval since the last PostprocessIntegrateData, stationary boxes included
// (pass a zero velocity), or ErrStaleDomain is returned.
func (e *Evaluator) ComputeHydrodynamicForce(f Fields, h *samr.PatchHierarchy, coarsest, finest int,
	currentTime, newTime float64) (err error) {
	if !(newTime > currentTime) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidTimeInterval, currentTime, newTime)
	}
	if coarsest < 0 || coarsest > finest || finest > h.FinestLevelNumber() {
		return fmt.Errorf("%w: [%d, %d] with finest level %d", ErrLevelRange, coarsest, finest, h.FinestLevelNumber())
	}
	ids := e.StructureIDs()
	for _, id := range ids {
		b := e.bodies[id]
		if !b.updated || b.updateCur != currentTime || b.updateNew != newTime {
			return fmt.Errorf("%w: structure %d for [%g, %g]", ErrStaleDomain, id, currentTime, newTime)
		}
	}
	var rebuilt bool
	if rebuilt, err = e.faceWeights.Build(h); err != nil {
		return
	}
	if rebuilt && e.verbose {
		fmt.Printf("%s: rebuilt face weights for hierarchy version %d on rank %d\n",
			e.Name, h.StructureVersion(), e.rank)
	}
	dt := newTime - currentTime
	for _, id := range ids {
		fo := &e.bodies[id].ForceObject
		var pBox, lBox, trac, torque r3.Vec
		pBox, lBox = e.momentumIntegral(fo, f, h, coarsest, finest)
		pBox, lBox = e.sumReduce(pBox), e.sumReduce(lBox)
		trac, torque = e.tractionIntegral(fo, f, h, coarsest, finest)
		trac, torque = e.sumReduce(trac), e.sumReduce(torque)

		fo.PBoxNew, fo.LBoxNew = pBox, lBox
		fo.FNew = r3.Add(rateOfChange(fo.PBoxCurrent, fo.PBoxNew, fo.PNew, fo.PCurrent, dt), trac)
		fo.TNew = r3.Add(rateOfChange(fo.LBoxCurrent, fo.LBoxNew, fo.LNew, fo.LCurrent, dt), torque)
	}
	return
}

// rateOfChange is (boxCur - boxNew + structNew - structCur)/dt
func rateOfChange(boxCur, boxNew, structNew, structCur r3.Vec, dt float64) r3.Vec {
	return r3.Scale(1/dt, r3.Add(r3.Sub(boxCur, boxNew), r3.Sub(structNew, structCur)))
}

func (e *Evaluator) sumReduce(v r3.Vec) r3.Vec {
	buf := []float64{v.X, v.Y, v.Z}
	e.reducer.SumReduce(buf)
	return r3.Vec{X: buf[0], Y: buf[1], Z: buf[2]}
}

// PostprocessIntegrateData completes the step: every body's new state
// becomes its current state.
func (e *Evaluator) PostprocessIntegrateData(currentTime, newTime float64) {
	for _, b := range e.bodies {
		b.promote()
		b.updated = false
	}
}

func (e *Evaluator) GetForce(id int) (fo ForceObject, err error) {
	b, ok := e.bodies[id]
	if !ok {
		err = fmt.Errorf("%w: structure %d in %s", ErrUnknownStructure, id, e.Name)
		return
	}
	return b.ForceObject, nil
}
