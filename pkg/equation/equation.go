package equation

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// Coefficient is either a forced numeric value or a TypeID whose value
// is pulled from the satellite's current TypeValueMap at assembly time
// (spec §3). Exactly one of the two is meaningful, selected by Forced.
type Coefficient struct {
	Forced bool
	Value  float64    // meaningful iff Forced
	Source obs.TypeID // meaningful iff !Forced
}

// FixedCoef builds a Coefficient with a forced numeric value.
func FixedCoef(v float64) Coefficient { return Coefficient{Forced: true, Value: v} }

// FromType builds a Coefficient pulled from the satellite's data at
// assembly time.
func FromType(t obs.TypeID) Coefficient { return Coefficient{Forced: false, Source: t} }

// Resolve returns the numeric coefficient value, pulling from data when
// not forced.
func (c Coefficient) Resolve(data obs.TypeValueMap) (float64, error) {
	if c.Forced {
		return c.Value, nil
	}
	return data.Value(c.Source)
}

// VarCoeffMap is an ordered map Variable -> Coefficient (spec §3). Go
// maps have no iteration order, so VarCoeffMap keeps an explicit key
// slice alongside the map to preserve insertion order for deterministic
// design-matrix column emission.
type VarCoeffMap struct {
	order []Variable
	coefs map[key]Coefficient
}

func NewVarCoeffMap() *VarCoeffMap {
	return &VarCoeffMap{coefs: make(map[key]Coefficient)}
}

// Set records the coefficient for v, appending v to the order the
// first time it is seen.
func (m *VarCoeffMap) Set(v Variable, c Coefficient) {
	k := v.key()
	if _, exists := m.coefs[k]; !exists {
		m.order = append(m.order, v)
	}
	m.coefs[k] = c
}

// Variables returns the Variables in insertion order.
func (m *VarCoeffMap) Variables() []Variable { return m.order }

// Coefficient returns the coefficient recorded for v.
func (m *VarCoeffMap) Coefficient(v Variable) (Coefficient, bool) {
	c, ok := m.coefs[v.key()]
	return c, ok
}

// Len reports the number of entries.
func (m *VarCoeffMap) Len() int { return len(m.order) }

// Header carries the data common to one Equation: the independent-term
// Variable (the prefit TypeID), the satellite/source/system it belongs
// to, its constant weight, and an order index used to keep equation
// emission deterministic within an epoch (spec §3).
type Header struct {
	IndependentTerm Variable
	Source          gnssid.SourceID
	Sat             gnssid.SatID
	System          gnssid.System
	ConstWeight     float64
	OrderIndex      int
}

// Equation is one row of the linearized measurement system: an
// independent term (prefit residual) plus a body mapping each unknown
// to its coefficient (spec §3).
type Equation struct {
	Header Header
	Body   *VarCoeffMap
}

// NewEquation builds an Equation with an empty body and constant weight
// 1.0, matching the GPSTk-derived equationHeader default.
func NewEquation(indTerm Variable, source gnssid.SourceID, sat gnssid.SatID, sys gnssid.System) *Equation {
	return &Equation{
		Header: Header{
			IndependentTerm: indTerm,
			Source:          source,
			Sat:             sat,
			System:          sys,
			ConstWeight:     1.0,
			OrderIndex:      -1,
		},
		Body: NewVarCoeffMap(),
	}
}

// AddVariable records the coefficient of v in this equation's body.
func (e *Equation) AddVariable(v Variable, c Coefficient) { e.Body.Set(v, c) }
