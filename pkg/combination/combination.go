// Package combination implements the linear-combination synthesis of
// spec §4.2: MW, GF, ionosphere-free (dual through quintuple
// frequency), and prefit residuals.
//
// Grounded on original_source/src/ProceFrame/ComputeCombination.{hpp,
// cpp} and LinearCombinations.hpp, which define exactly the
// header+body+optional-input shape spec §4.2 describes ("a combination
// is a header TypeID plus a finite map {input TypeID -> coefficient}
// plus a set of optional input types").
package combination

import "github.com/xbfeng/gnssppp/pkg/obs"

// Term is one (input type, coefficient) pair in a Combination's body.
type Term struct {
	Type        obs.TypeID
	Coefficient float64
	Optional    bool
}

// Combination is a weighted sum of observable types producing one
// output TypeID, spec §4.2.
type Combination struct {
	Header obs.TypeID
	Terms  []Term
}

// Apply evaluates the combination against one satellite's
// TypeValueMap. If any non-optional input is absent the combination is
// skipped (ok=false); missing optional inputs contribute zero.
func (c Combination) Apply(data obs.TypeValueMap) (value float64, ok bool) {
	for _, term := range c.Terms {
		v, present := data[term.Type]
		if !present {
			if term.Optional {
				continue
			}
			return 0, false
		}
		value += term.Coefficient * v
	}
	return value, true
}

// ApplyAll runs c against every satellite in data, storing the result
// under c.Header for satellites where the combination is defined, and
// leaving satellites that lack a required input untouched (spec §4.2:
// "if any non-optional input is absent, the combination is skipped").
func ApplyAll(c Combination, data obs.SatTypeValueMap) {
	for _, tvm := range data {
		if v, ok := c.Apply(tvm); ok {
			tvm.Set(c.Header, v)
		}
	}
}

// Set is an ordered list of combinations applied in sequence, matching
// ComputeCombination's "FIFO basis" (a combination may consume another
// combination's output, e.g. a prefit residual consuming PC12G).
type Set []Combination

// Apply runs every combination in the set, in order, against data.
func (s Set) Apply(data obs.SatTypeValueMap) {
	for _, c := range s {
		ApplyAll(c, data)
	}
}
