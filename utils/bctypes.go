package utils

import (
	"fmt"
	"strings"
)

// BCType labels the physical boundary on each side of the Cartesian domain
type BCType uint8

const (
	// BCNone marks an axis that is not used (e.g. the third axis in 2D)
	BCNone BCType = iota
	BCWall
	BCSlipWall
	BCInflow
	BCOutflow
	BCSymmetry
	BCFarfield
	// BCPeriodic wraps the domain; the grid geometry reports a periodic shift
	// along any axis carrying it
	BCPeriodic
)

func (bc BCType) String() string {
	names := map[BCType]string{
		BCNone:     "None",
		BCWall:     "Wall",
		BCSlipWall: "SlipWall",
		BCInflow:   "Inflow",
		BCOutflow:  "Outflow",
		BCSymmetry: "Symmetry",
		BCFarfield: "Farfield",
		BCPeriodic: "Periodic",
	}
	if name, ok := names[bc]; ok {
		return name
	}
	return "Unknown"
}

// BCNameMap maps lowercase names used in input files to BCType
var BCNameMap = map[string]BCType{
	"none":       BCNone,
	"wall":       BCWall,
	"no_slip":    BCWall,
	"noslip":     BCWall,
	"slip":       BCSlipWall,
	"slip_wall":  BCSlipWall,
	"inlet":      BCInflow,
	"inflow":     BCInflow,
	"outlet":     BCOutflow,
	"outflow":    BCOutflow,
	"symmetry":   BCSymmetry,
	"farfield":   BCFarfield,
	"far_field":  BCFarfield,
	"freestream": BCFarfield,
	"periodic":   BCPeriodic,
}

// ParseBCName converts a boundary name to BCType, case-insensitive
func ParseBCName(name string) (BCType, error) {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if bcType, ok := BCNameMap[lowerName]; ok {
		return bcType, nil
	}
	return BCNone, fmt.Errorf("unknown boundary type %q", name)
}
