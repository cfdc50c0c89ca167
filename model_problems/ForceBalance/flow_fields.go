package ForceBalance

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/InputParameters"
)

// FlowField is an analytic velocity and pressure field standing in for the
// flow solver
type FlowField interface {
	Velocity(x r3.Vec, t float64) r3.Vec
	Pressure(x r3.Vec, t float64) float64
}

type FlowType uint8

const (
	QUIESCENT FlowType = iota
	UNIFORM
	SHEAR
	PRESSURE_GRADIENT
)

var (
	FlowNames = map[string]FlowType{
		"":                  QUIESCENT,
		"quiescent":         QUIESCENT,
		"uniform":           UNIFORM,
		"shear":             SHEAR,
		"pressure_gradient": PRESSURE_GRADIENT,
	}
	FlowPrintNames = []string{"Fluid at rest", "Uniform flow", "Linear shear flow", "Linear pressure gradient"}
)

func (ft FlowType) Print() string {
	if int(ft) < len(FlowPrintNames) {
		return FlowPrintNames[ft]
	}
	return "Unknown"
}

func NewFlowType(label string) (ft FlowType, err error) {
	var ok bool
	if ft, ok = FlowNames[label]; !ok {
		err = fmt.Errorf("unable to use flow type named %q", label)
	}
	return
}

type QuiescentFlow struct {
	P0 float64
}

func (f QuiescentFlow) Velocity(x r3.Vec, t float64) r3.Vec { return r3.Vec{} }
func (f QuiescentFlow) Pressure(x r3.Vec, t float64) float64 { return f.P0 }

type UniformFlow struct {
	U  r3.Vec
	P0 float64
}

func (f UniformFlow) Velocity(x r3.Vec, t float64) r3.Vec { return f.U }
func (f UniformFlow) Pressure(x r3.Vec, t float64) float64 { return f.P0 }

// ShearFlow is u = (Rate*y, 0, 0)
type ShearFlow struct {
	Rate, P0 float64
}

func (f ShearFlow) Velocity(x r3.Vec, t float64) r3.Vec { return r3.Vec{X: f.Rate * x.Y} }
func (f ShearFlow) Pressure(x r3.Vec, t float64) float64 { return f.P0 }

// PressureGradientFlow is a fluid at rest under p = P0 + GradP.x
type PressureGradientFlow struct {
	P0    float64
	GradP r3.Vec
}

func (f PressureGradientFlow) Velocity(x r3.Vec, t float64) r3.Vec { return r3.Vec{} }
func (f PressureGradientFlow) Pressure(x r3.Vec, t float64) float64 {
	return f.P0 + r3.Dot(f.GradP, x)
}

func NewFlowField(fi InputParameters.FlowInput) (flow FlowField, err error) {
	var ft FlowType
	if ft, err = NewFlowType(fi.Type); err != nil {
		return
	}
	switch ft {
	case QUIESCENT:
		flow = QuiescentFlow{P0: fi.P0}
	case UNIFORM:
		flow = UniformFlow{U: vecFromSlice(fi.U), P0: fi.P0}
	case SHEAR:
		flow = ShearFlow{Rate: fi.ShearRate, P0: fi.P0}
	case PRESSURE_GRADIENT:
		flow = PressureGradientFlow{P0: fi.P0, GradP: vecFromSlice(fi.GradP)}
	}
	return
}

// vecFromSlice reads up to three components, missing ones are zero
func vecFromSlice(a []float64) (v r3.Vec) {
	var arr [3]float64
	copy(arr[:], a)
	return r3.Vec{X: arr[0], Y: arr[1], Z: arr[2]}
}
