// SPDX-License-Identifier: MIT

package control

import (
	"fmt"
	"math"
)

// Problem is the ordered parameter and observation sets of a calibration
// problem plus the modelled values Φ is computed from.
//
// Order matters: every ensemble built for a Problem lays its columns out in
// the order parameters (or observations) were given to New.
type Problem struct {
	pars      []Parameter
	obs       []Observation
	parIndex  map[string]int
	obsIndex  map[string]int
	residuals map[string]float64
}

// New validates pars and obs and builds a Problem.
//
// Validation:
//   - names unique within each set (a parameter and an observation may share a name);
//   - finite value and bounds, lower ≤ upper;
//   - log-transformed parameters need value, lower and upper > 0;
//   - tied parameters name an existing, non-tied partner other than themselves;
//   - observation weights finite and ≥ 0.
//
// The value is NOT required to lie within bounds: an infeasible starting point
// must stay representable so bounds enforcement can report it.
func New(pars []Parameter, obs []Observation) (*Problem, error) {
	p := &Problem{
		pars:      append([]Parameter(nil), pars...),
		obs:       append([]Observation(nil), obs...),
		parIndex:  make(map[string]int, len(pars)),
		obsIndex:  make(map[string]int, len(obs)),
		residuals: make(map[string]float64),
	}

	for i, par := range p.pars {
		if _, dup := p.parIndex[par.Name]; dup || par.Name == "" {
			return nil, varErr(par.Name, ErrDuplicateName)
		}
		p.parIndex[par.Name] = i
	}
	for i, par := range p.pars {
		if err := validateParameter(par); err != nil {
			return nil, err
		}
		if par.Transform == TransformTied {
			j, ok := p.parIndex[par.TiedTo]
			if !ok || j == i || p.pars[j].Transform == TransformTied {
				return nil, varErr(par.Name, fmt.Errorf("tied to %q: %w", par.TiedTo, ErrInvalidTie))
			}
		}
	}

	for i, o := range p.obs {
		if _, dup := p.obsIndex[o.Name]; dup || o.Name == "" {
			return nil, varErr(o.Name, ErrDuplicateName)
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return nil, varErr(o.Name, ErrInvalidBounds)
		}
		if math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) || o.Weight < 0 {
			return nil, varErr(o.Name, ErrInvalidWeight)
		}
		p.obsIndex[o.Name] = i
	}

	return p, nil
}

func validateParameter(par Parameter) error {
	for _, v := range [...]float64{par.Value, par.Lower, par.Upper} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return varErr(par.Name, ErrInvalidBounds)
		}
	}
	if par.Lower > par.Upper {
		return varErr(par.Name, fmt.Errorf("lower %g > upper %g: %w", par.Lower, par.Upper, ErrInvalidBounds))
	}
	if int(par.Transform) >= len(transformNames) {
		return varErr(par.Name, ErrInvalidTransform)
	}
	if par.Transform == TransformLog && (par.Value <= 0 || par.Lower <= 0 || par.Upper <= 0) {
		return varErr(par.Name, fmt.Errorf("log transform needs positive value and bounds: %w", ErrInvalidTransform))
	}

	return nil
}

// Clone returns an independent copy, residuals included.
func (p *Problem) Clone() *Problem {
	cp := &Problem{
		pars:      append([]Parameter(nil), p.pars...),
		obs:       append([]Observation(nil), p.obs...),
		parIndex:  make(map[string]int, len(p.parIndex)),
		obsIndex:  make(map[string]int, len(p.obsIndex)),
		residuals: make(map[string]float64, len(p.residuals)),
	}
	for k, v := range p.parIndex {
		cp.parIndex[k] = v
	}
	for k, v := range p.obsIndex {
		cp.obsIndex[k] = v
	}
	for k, v := range p.residuals {
		cp.residuals[k] = v
	}

	return cp
}

// Parameters returns a copy of the parameter set in configuration order.
func (p *Problem) Parameters() []Parameter { return append([]Parameter(nil), p.pars...) }

// Observations returns a copy of the observation set in configuration order.
func (p *Problem) Observations() []Observation { return append([]Observation(nil), p.obs...) }

// Parameter looks a parameter up by name.
func (p *Problem) Parameter(name string) (Parameter, bool) {
	i, ok := p.parIndex[name]
	if !ok {
		return Parameter{}, false
	}

	return p.pars[i], true
}

// Observation looks an observation up by name.
func (p *Problem) Observation(name string) (Observation, bool) {
	i, ok := p.obsIndex[name]
	if !ok {
		return Observation{}, false
	}

	return p.obs[i], true
}

// ParIndex returns the configuration position of a parameter, or -1.
func (p *Problem) ParIndex(name string) int {
	if i, ok := p.parIndex[name]; ok {
		return i
	}

	return -1
}

// ObsIndex returns the configuration position of an observation, or -1.
func (p *Problem) ObsIndex(name string) int {
	if i, ok := p.obsIndex[name]; ok {
		return i
	}

	return -1
}

// ParNames lists every parameter name in configuration order.
func (p *Problem) ParNames() []string {
	out := make([]string, len(p.pars))
	for i, par := range p.pars {
		out[i] = par.Name
	}

	return out
}

// AdjParNames lists adjustable (not fixed, not tied) parameter names.
func (p *Problem) AdjParNames() []string {
	out := make([]string, 0, len(p.pars))
	for _, par := range p.pars {
		if par.Adjustable() {
			out = append(out, par.Name)
		}
	}

	return out
}

// ObsNames lists every observation name in configuration order.
func (p *Problem) ObsNames() []string {
	out := make([]string, len(p.obs))
	for i, o := range p.obs {
		out[i] = o.Name
	}

	return out
}

// NonzeroObsNames lists observations with weight > 0 in configuration order.
func (p *Problem) NonzeroObsNames() []string {
	out := make([]string, 0, len(p.obs))
	for _, o := range p.obs {
		if o.Nonzero() {
			out = append(out, o.Name)
		}
	}

	return out
}

// ZeroWeightObsNames lists observations with weight == 0 in configuration order.
func (p *Problem) ZeroWeightObsNames() []string {
	out := make([]string, 0)
	for _, o := range p.obs {
		if !o.Nonzero() {
			out = append(out, o.Name)
		}
	}

	return out
}

// NPar is the parameter count.
func (p *Problem) NPar() int { return len(p.pars) }

// NParAdj is the adjustable parameter count.
func (p *Problem) NParAdj() int { return len(p.AdjParNames()) }

// NObs is the observation count.
func (p *Problem) NObs() int { return len(p.obs) }

// NNonzeroObs is the nonzero-weight observation count.
func (p *Problem) NNonzeroObs() int { return len(p.NonzeroObsNames()) }

// ParGroups lists parameter groups in first-appearance order.
func (p *Problem) ParGroups() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, par := range p.pars {
		if _, ok := seen[par.Group]; !ok {
			seen[par.Group] = struct{}{}
			out = append(out, par.Group)
		}
	}

	return out
}

// ObsGroups lists observation groups in first-appearance order.
func (p *Problem) ObsGroups() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range p.obs {
		if _, ok := seen[o.Group]; !ok {
			seen[o.Group] = struct{}{}
			out = append(out, o.Group)
		}
	}

	return out
}

// SetResidual records the modelled value for an observation.
func (p *Problem) SetResidual(name string, modelled float64) error {
	if _, ok := p.obsIndex[name]; !ok {
		return varErr(name, ErrUnknownName)
	}
	p.residuals[name] = modelled

	return nil
}

// Residual returns the modelled value recorded for an observation.
func (p *Problem) Residual(name string) (float64, bool) {
	v, ok := p.residuals[name]

	return v, ok
}

// ClearResiduals drops every recorded modelled value.
func (p *Problem) ClearResiduals() { p.residuals = make(map[string]float64) }

// Phi returns Σ (weight·(value − modelled))² over nonzero-weight observations.
// Zero-weight observations contribute nothing and need no modelled value.
func (p *Problem) Phi() (float64, error) {
	var phi float64
	for _, o := range p.obs {
		if !o.Nonzero() {
			continue
		}
		sim, ok := p.residuals[o.Name]
		if !ok {
			return 0, varErr(o.Name, ErrMissingResidual)
		}
		r := o.Weight * (o.Value - sim)
		phi += r * r
	}

	return phi, nil
}
