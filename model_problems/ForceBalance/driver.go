package ForceBalance

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/InputParameters"
	"github.com/notargets/ibforce/forces"
	"github.com/notargets/ibforce/restart"
	"github.com/notargets/ibforce/samr"
	"github.com/notargets/ibforce/utils"
)

const EvaluatorName = "cv_forces"

type ForceDriver struct {
	Input          *InputParameters.ForceInputParameters
	Hierarchy      *samr.PatchHierarchy
	Flow           FlowField
	Fields         forces.Fields
	ParallelDegree int
	Restart        *restart.Manager
	RestartDir     string
	StartStep      int
	History        map[int][]forces.ForceObject // Per structure, one entry per step
	verbose        bool
}

// NewForceDriver builds the hierarchy and flow described by ip. A positive
// restartStep resumes from the checkpoint of that step in restartDir.
func NewForceDriver(ip *InputParameters.ForceInputParameters, ProcLimit int,
	restartDir string, restartStep int, verbose bool) (fd *ForceDriver, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	fd = &ForceDriver{
		Input:      ip,
		Restart:    restart.NewManager(),
		RestartDir: ip.RestartDir,
		History:    make(map[int][]forces.ForceObject),
		verbose:    verbose,
	}
	if len(restartDir) != 0 {
		fd.RestartDir = restartDir
	}
	if len(fd.RestartDir) == 0 {
		fd.RestartDir = "."
	}
	fd.SetParallelDegree(ProcLimit)
	if fd.Hierarchy, err = NewHierarchy(ip, fd.ParallelDegree); err != nil {
		return nil, err
	}
	fd.Hierarchy.AssignOwners(fd.ParallelDegree)
	if fd.Flow, err = NewFlowField(ip.Flow); err != nil {
		return nil, err
	}
	if fd.Fields, err = RegisterFields(fd.Hierarchy); err != nil {
		return nil, err
	}
	FillHierarchy(fd.Hierarchy, fd.Fields, fd.Flow, 0, samr.AllRanks)
	if restartStep > 0 {
		if err = fd.Restart.OpenRestartFile(fd.RestartDir, restartStep); err != nil {
			return nil, err
		}
		fd.StartStep = restartStep
	}
	return
}

func (fd *ForceDriver) SetParallelDegree(ProcLimit int) {
	if ProcLimit != 0 {
		fd.ParallelDegree = ProcLimit
	} else if fd.Input.ParallelDegree != 0 {
		fd.ParallelDegree = fd.Input.ParallelDegree
	} else {
		fd.ParallelDegree = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(runtime.NumCPU())
}

// NewHierarchy builds the grid levels of ip. Without CoarseBoxes level zero is
// cut into NP slabs along x.
func NewHierarchy(ip *InputParameters.ForceInputParameters, NP int) (h *samr.PatchHierarchy, err error) {
	var (
		dim    = ip.Dim
		cells  = intVector(ip.CoarseCells, dim)
		bcs    [3]utils.BCType
		g      *samr.GridGeometry
		coarse []samr.Box
	)
	for d := 0; d < dim && d < len(ip.Boundaries); d++ {
		if bcs[d], err = utils.ParseBCName(ip.Boundaries[d]); err != nil {
			return
		}
	}
	if g, err = samr.NewGridGeometry(dim, vecFromSlice(ip.DomainLower[:dim]), vecFromSlice(ip.DomainUpper[:dim]),
		cells, bcs); err != nil {
		return
	}
	h = samr.NewPatchHierarchy(g)
	if len(ip.CoarseBoxes) != 0 {
		coarse = boxes(ip.CoarseBoxes, dim)
	} else {
		pm := utils.NewPartitionMap(min(NP, cells[0]), cells[0])
		for np := 0; np < pm.ParallelDegree; np++ {
			iMin, iMax := pm.GetBucketRange(np)
			b := g.DomainBox
			b.Lower[0], b.Upper[0] = iMin, iMax-1
			coarse = append(coarse, b)
		}
	}
	if _, err = h.MakeNewPatchLevel(0, samr.IntVector{}, coarse); err != nil {
		return nil, err
	}
	for i, lvl := range ip.Levels {
		if _, err = h.MakeNewPatchLevel(i+1, intVector(lvl.Ratio, dim), boxes(lvl.Boxes, dim)); err != nil {
			return nil, err
		}
	}
	return
}

func intVector(a []int, dim int) (iv samr.IntVector) {
	copy(iv[:dim], a)
	return
}

func boxes(bi []InputParameters.BoxInput, dim int) (bl []samr.Box) {
	for _, b := range bi {
		bl = append(bl, samr.NewBox(dim, intVector(b.Lower, dim), intVector(b.Upper, dim)))
	}
	return
}

// Run advances every structure for Input.Steps steps on ParallelDegree
// workers. Each worker evaluates the patches it owns; worker zero records the
// history, prints it and writes checkpoints.
func (fd *ForceDriver) Run() (err error) {
	var (
		NP      = fd.ParallelDegree
		tc      = utils.NewThreadCommunicator(NP)
		wg      = sync.WaitGroup{}
		errs    = make([]error, NP)
		elapsed time.Duration
	)
	fd.PrintInitialization()
	start := time.Now()
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(myThread int) {
			defer wg.Done()
			errs[myThread] = fd.runWorker(myThread, tc.Reducer(myThread))
		}(np)
	}
	wg.Wait()
	elapsed = time.Since(start)
	for _, err = range errs {
		if err != nil {
			return
		}
	}
	fd.PrintFinal(elapsed, fd.Input.Steps)
	return
}

func (fd *ForceDriver) runWorker(myThread int, reducer utils.Reducer) (err error) {
	var (
		ip       = fd.Input
		h        = fd.Hierarchy
		leader   = myThread == 0
		writeErr error
		e        *forces.Evaluator
	)
	if e, err = forces.NewEvaluator(EvaluatorName, ip.Rho, ip.Mu,
		forces.WithReducer(reducer),
		forces.WithRestartManager(fd.Restart, leader),
		forces.WithVerbose(fd.verbose && leader)); err != nil {
		return
	}
	defer e.Close()
	for _, s := range ip.Structures {
		if err = e.RegisterStructure(s.ID, s.Level, vecFromSlice(s.BoxVelocity),
			vecFromSlice(s.BoxLower), vecFromSlice(s.BoxUpper)); err != nil {
			return
		}
	}
	plotSteps := max(ip.PlotSteps, 1)
	for step := fd.StartStep; step < fd.StartStep+ip.Steps; step++ {
		t0, t1 := float64(step)*ip.Dt, float64(step+1)*ip.Dt
		for _, s := range ip.Structures {
			U := vecFromSlice(s.BoxVelocity)
			if err = e.UpdateStructureDomain(s.ID, s.Level, t0, t1, U, r3.Scale(s.Mass, U), r3.Vec{}); err != nil {
				return
			}
		}
		if err = e.ComputeHydrodynamicForce(fd.Fields, h, 0, h.FinestLevelNumber(), t0, t1); err != nil {
			return
		}
		// Forces are already reduced, every worker sees the same value
		for _, id := range e.StructureIDs() {
			fo, _ := e.GetForce(id)
			if utils.IsNan(samr.ArrayFromVec(fo.FNew)) || utils.IsNan(samr.ArrayFromVec(fo.TNew)) {
				return fmt.Errorf("NaN force on structure %d at step %d", id, step+1)
			}
		}
		if leader {
			fd.record(e)
			if (step+1-fd.StartStep)%plotSteps == 0 || step == fd.StartStep {
				fd.PrintUpdate(e, step+1, t1)
			}
		}
		e.PostprocessIntegrateData(t0, t1)
		// A failed checkpoint must not stop this worker, the others are waiting
		// on it in the next reduction
		if leader && ip.RestartInterval > 0 && (step+1)%ip.RestartInterval == 0 && writeErr == nil {
			var path string
			if path, writeErr = fd.Restart.WriteRestartFile(fd.RestartDir, step+1); writeErr == nil {
				fmt.Printf("Wrote restart file %s\n", path)
			}
		}
	}
	return writeErr
}

func (fd *ForceDriver) record(e *forces.Evaluator) {
	for _, id := range e.StructureIDs() {
		fo, _ := e.GetForce(id)
		fd.History[id] = append(fd.History[id], fo)
	}
}

func (fd *ForceDriver) PrintInitialization() {
	ip := fd.Input
	fmt.Printf("Control volume forces in %d Dimensions\n", ip.Dim)
	fmt.Printf("Using %d go routines in parallel\n", fd.ParallelDegree)
	fmt.Printf("Solving %s with %d levels\n", flowTypeName(ip.Flow.Type), fd.Hierarchy.NumberOfLevels())
	if fd.StartStep > 0 {
		fmt.Printf("Restarting from step %d in [%s]\n", fd.StartStep, fd.RestartDir)
	}
	fmt.Printf("Rho = %8.4f, Mu = %8.4f, Dt = %8.5f, Steps = %d\n\n", ip.Rho, ip.Mu, ip.Dt, ip.Steps)
	fmt.Printf("    iter    time   id")
	fmt.Printf("         Fx         Fy         Fz")
	fmt.Printf("         Tx         Ty         Tz\n")
}

func (fd *ForceDriver) PrintUpdate(e *forces.Evaluator, steps int, Time float64) {
	format := "%11.4e"
	for _, id := range e.StructureIDs() {
		fo, _ := e.GetForce(id)
		fmt.Printf("%8d%8.4f%5d", steps, Time, id)
		for _, v := range []r3.Vec{fo.FNew, fo.TNew} {
			fmt.Printf(format, v.X)
			fmt.Printf(format, v.Y)
			fmt.Printf(format, v.Z)
		}
		fmt.Printf("\n")
	}
}

func (fd *ForceDriver) PrintFinal(elapsed time.Duration, steps int) {
	var cells int
	for ln := 0; ln < fd.Hierarchy.NumberOfLevels(); ln++ {
		for _, p := range fd.Hierarchy.PatchLevel(ln).Patches {
			cells += p.Box.Size()
		}
	}
	rate := float64(elapsed.Microseconds()) / float64(max(cells*steps, 1))
	fmt.Printf("\nRate of execution = %8.5f us/(cell*iteration) over %d iterations\n", rate, steps)
	fmt.Printf("%s\n", utils.GetMemUsage())
}

func flowTypeName(label string) string {
	ft, err := NewFlowType(label)
	if err != nil {
		return label
	}
	return ft.Print()
}
