package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/ibforce/utils"
)

type BoxInput struct {
	Lower []int `yaml:"Lower"`
	Upper []int `yaml:"Upper"`
}

// LevelInput is one refinement level, boxes in the index space of the level
type LevelInput struct {
	Ratio []int      `yaml:"Ratio"` // Ratio to the next coarser level
	Boxes []BoxInput `yaml:"Boxes"`
}

type StructureInput struct {
	ID          int       `yaml:"ID"`
	Level       int       `yaml:"Level"`
	BoxLower    []float64 `yaml:"BoxLower"`
	BoxUpper    []float64 `yaml:"BoxUpper"`
	BoxVelocity []float64 `yaml:"BoxVelocity"`
	Mass        float64   `yaml:"Mass"`
}

type FlowInput struct {
	Type      string    `yaml:"Type"` // quiescent, uniform, shear or pressure_gradient
	U         []float64 `yaml:"U"`
	P0        float64   `yaml:"P0"`
	GradP     []float64 `yaml:"GradP"`
	ShearRate float64   `yaml:"ShearRate"`
}

// Parameters obtained from the YAML input file
type ForceInputParameters struct {
	Title           string           `yaml:"Title"`
	Dim             int              `yaml:"Dim"`
	Rho             float64          `yaml:"Rho"`
	Mu              float64          `yaml:"Mu"`
	DomainLower     []float64        `yaml:"DomainLower"`
	DomainUpper     []float64        `yaml:"DomainUpper"`
	CoarseCells     []int            `yaml:"CoarseCells"`
	Boundaries      []string         `yaml:"Boundaries"`  // One per axis, see utils.BCNameMap
	CoarseBoxes     []BoxInput       `yaml:"CoarseBoxes"` // Level zero patches, slabs along x if empty
	Levels          []LevelInput     `yaml:"Levels"`
	Structures      []StructureInput `yaml:"Structures"`
	Flow            FlowInput        `yaml:"Flow"`
	Dt              float64          `yaml:"Dt"`
	Steps           int              `yaml:"Steps"`
	ParallelDegree  int              `yaml:"ParallelDegree"`
	RestartInterval int              `yaml:"RestartInterval"`
	RestartDir      string           `yaml:"RestartDir"`
	PlotSteps       int              `yaml:"PlotSteps"`
}

func (ip *ForceInputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *ForceInputParameters) Validate() (err error) {
	if ip.Dim != 2 && ip.Dim != 3 {
		return fmt.Errorf("Dim must be 2 or 3, have %d", ip.Dim)
	}
	if ip.Rho <= 0 {
		return fmt.Errorf("Rho must be positive, have %g", ip.Rho)
	}
	if ip.Mu < 0 {
		return fmt.Errorf("Mu must not be negative, have %g", ip.Mu)
	}
	if ip.Dt <= 0 {
		return fmt.Errorf("Dt must be positive, have %g", ip.Dt)
	}
	if ip.Steps < 1 {
		return fmt.Errorf("Steps must be at least 1, have %d", ip.Steps)
	}
	if len(ip.DomainLower) < ip.Dim || len(ip.DomainUpper) < ip.Dim || len(ip.CoarseCells) < ip.Dim {
		return fmt.Errorf("DomainLower, DomainUpper and CoarseCells need %d entries", ip.Dim)
	}
	if len(ip.Boundaries) != 0 && len(ip.Boundaries) < ip.Dim {
		return fmt.Errorf("Boundaries needs %d entries, have %d", ip.Dim, len(ip.Boundaries))
	}
	for _, name := range ip.Boundaries {
		if _, err = utils.ParseBCName(name); err != nil {
			return
		}
	}
	for _, b := range ip.CoarseBoxes {
		if err = ip.checkBox(b, "CoarseBoxes"); err != nil {
			return
		}
	}
	for i, lvl := range ip.Levels {
		if len(lvl.Ratio) < ip.Dim {
			return fmt.Errorf("Levels[%d].Ratio needs %d entries", i, ip.Dim)
		}
		if len(lvl.Boxes) == 0 {
			return fmt.Errorf("Levels[%d] has no boxes", i)
		}
		for _, b := range lvl.Boxes {
			if err = ip.checkBox(b, fmt.Sprintf("Levels[%d]", i)); err != nil {
				return
			}
		}
	}
	ids := make(map[int]bool)
	for _, s := range ip.Structures {
		if ids[s.ID] {
			return fmt.Errorf("structure %d listed twice", s.ID)
		}
		ids[s.ID] = true
		if len(s.BoxLower) < ip.Dim || len(s.BoxUpper) < ip.Dim {
			return fmt.Errorf("structure %d: BoxLower and BoxUpper need %d entries", s.ID, ip.Dim)
		}
		for d := 0; d < ip.Dim; d++ {
			if s.BoxUpper[d]-s.BoxLower[d] < utils.NODETOL {
				return fmt.Errorf("structure %d: BoxUpper must exceed BoxLower along axis %d", s.ID, d)
			}
		}
	}
	switch ip.Flow.Type {
	case "", "quiescent", "uniform", "shear", "pressure_gradient":
	default:
		return fmt.Errorf("unknown Flow.Type %q", ip.Flow.Type)
	}
	if ip.RestartInterval < 0 {
		return fmt.Errorf("RestartInterval must not be negative, have %d", ip.RestartInterval)
	}
	return
}

func (ip *ForceInputParameters) checkBox(b BoxInput, where string) error {
	if len(b.Lower) < ip.Dim || len(b.Upper) < ip.Dim {
		return fmt.Errorf("%s: box corners need %d entries", where, ip.Dim)
	}
	return nil
}

func (ip *ForceInputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dim)
	fmt.Printf("%8.5f\t\t= Rho\n", ip.Rho)
	fmt.Printf("%8.5f\t\t= Mu\n", ip.Mu)
	fmt.Printf("%v - %v\t= Domain\n", ip.DomainLower[:ip.Dim], ip.DomainUpper[:ip.Dim])
	fmt.Printf("%v\t\t\t= Coarse Cells\n", ip.CoarseCells[:ip.Dim])
	fmt.Printf("%v\t= Boundaries\n", ip.Boundaries)
	fmt.Printf("[%d]\t\t\t\t= Refined Levels\n", len(ip.Levels))
	fmt.Printf("[%s]\t\t\t= Flow Type\n", ip.Flow.Type)
	fmt.Printf("%8.5f\t\t= Dt\n", ip.Dt)
	fmt.Printf("[%d]\t\t\t\t= Steps\n", ip.Steps)
	for _, s := range ip.Structures {
		fmt.Printf("Structure[%d] = Level %d, Box %v - %v, Velocity %v, Mass %g\n",
			s.ID, s.Level, s.BoxLower, s.BoxUpper, s.BoxVelocity, s.Mass)
	}
}
