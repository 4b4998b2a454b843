package sampler

import (
	"fmt"
	"math"
)

const (
	// DefaultMinStep bounds the work done at extreme zoom-in.
	DefaultMinStep float32 = 0.0005
	// DefaultMaxStep keeps polylines smooth at extreme zoom-out.
	DefaultMaxStep float32 = 0.5
)

// DefaultStepPolicy is the clamp range used by AdaptiveStep.
var DefaultStepPolicy = StepPolicy{Min: DefaultMinStep, Max: DefaultMaxStep}

// StepPolicy derives the sampling step, in world units, from the zoom level.
type StepPolicy struct {
	Min float32 `json:"min_step" yaml:"min_step"`
	Max float32 `json:"max_step" yaml:"max_step"`
}

// Step returns clamp(1/scale, Min, Max), which keeps about one sample per
// pixel between the two bounds.
func (p StepPolicy) Step(scale float32) float32 {
	s := 1 / scale
	switch {
	case math.IsNaN(float64(s)) || s > p.Max:
		return p.Max
	case s < p.Min:
		return p.Min
	}
	return s
}

// Validate checks that 0 < Min <= Max and both are finite.
func (p StepPolicy) Validate() error {
	if !(p.Min > 0) || !(p.Max >= p.Min) || math.IsInf(float64(p.Max), 0) {
		return fmt.Errorf("invalid step policy: min=%v max=%v", p.Min, p.Max)
	}
	return nil
}

// OrDefault returns p if it is valid and DefaultStepPolicy otherwise.
func (p StepPolicy) OrDefault() StepPolicy {
	if p.Validate() != nil {
		return DefaultStepPolicy
	}
	return p
}

// AdaptiveStep applies DefaultStepPolicy to scale.
func AdaptiveStep(scale float32) float32 {
	return DefaultStepPolicy.Step(scale)
}
