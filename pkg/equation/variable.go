package equation

import (
	"fmt"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// ModelArena owns StochasticModel instances keyed by Variable identity,
// breaking the cycle the original GPSTk design has between Variable ->
// StochasticModel* and the stores that hold model instances (spec §9).
// Variable carries only an index into the arena.
type ModelArena struct {
	models []StochasticModel
}

func NewModelArena() *ModelArena { return &ModelArena{} }

// Put stores m and returns its arena index.
func (a *ModelArena) Put(m StochasticModel) int {
	a.models = append(a.models, m)
	return len(a.models) - 1
}

// Get returns the model at index idx.
func (a *ModelArena) Get(idx int) StochasticModel {
	if idx < 0 || idx >= len(a.models) {
		return Constant{}
	}
	return a.models[idx]
}

// Variable is a symbolic unknown (spec §3). It is a plain value type:
// copying a Variable is always safe, and equality/ordering use only the
// (typeOrder, type, source, satellite, arc) tuple, never the model
// index, matching spec §3's "equality uses the same tuple".
type Variable struct {
	Type     obs.TypeID
	Source   gnssid.SourceID
	Sat      gnssid.SatID
	Arc      float64

	IsSourceIndexed bool
	IsSatIndexed    bool
	IsArcIndexed    bool

	InitialVariance float64
	ModelIndex      int // index into a ModelArena; not part of equality

	// TypeOrder stabilizes deterministic parameter ordering within the
	// state vector (spec §3/§9). Convention used here: parameters are
	// grouped in the physical order they are introduced by the
	// equation assembler of spec §4.3 — position (0), clock (1),
	// troposphere (2), ionosphere (3), inter-frequency bias (4),
	// ambiguity (5) — so that, for a fixed epoch, sorting by
	// (TypeOrder, Type, Source, Sat, Arc) places all position
	// components first, then all clocks, and so on. This ordering
	// convention is otherwise undocumented upstream (spec §9 Open
	// Question); the above is this implementation's explicit answer.
	TypeOrder int

	NowIndex int // index into this epoch's state vector, -1 if retired
	PreIndex int // index into the previous epoch's state vector, -1 if new
}

const (
	TypeOrderPosition    = 0
	TypeOrderClock       = 1
	TypeOrderTroposphere = 2
	TypeOrderIonosphere  = 3
	TypeOrderIFB         = 4
	TypeOrderAmbiguity   = 5
)

func (v Variable) String() string {
	return fmt.Sprintf("%s/%s/%s/arc=%g", v.Type, v.Source, v.Sat, v.Arc)
}

// key is the comparable projection of a Variable used for equality and
// as a map key; it excludes NowIndex/PreIndex/ModelIndex, which are
// epoch-local bookkeeping, not part of the Variable's identity.
type key struct {
	typeOrder int
	typ       obs.TypeID
	source    gnssid.SourceID
	sat       gnssid.SatID
	arc       float64
}

func (v Variable) key() key {
	return key{v.TypeOrder, v.Type, v.Source, v.Sat, v.Arc}
}

// Identity is the exported, comparable projection of a Variable's
// identity fields, usable as a map key outside this package (e.g. by a
// solver tracking which filter row each Variable currently occupies
// across epochs).
type Identity = key

// Identity returns v's comparable identity, excluding epoch-local
// bookkeeping (NowIndex/PreIndex/ModelIndex).
func (v Variable) Identity() Identity { return v.key() }

// Equal reports whether v and o denote the same unknown.
func (v Variable) Equal(o Variable) bool { return v.key() == o.key() }

// Less implements the canonical ordering (TypeOrder, Type, Source, Sat,
// Arc) used to build the filter's state vector deterministically.
func (v Variable) Less(o Variable) bool {
	if v.TypeOrder != o.TypeOrder {
		return v.TypeOrder < o.TypeOrder
	}
	if v.Type != o.Type {
		return v.Type.Less(o.Type)
	}
	if v.Source != o.Source {
		return v.Source.Less(o.Source)
	}
	if v.Sat != o.Sat {
		return v.Sat.Less(o.Sat)
	}
	return v.Arc < o.Arc
}

// SortVariables returns a new, ascending-sorted copy of vars.
func SortVariables(vars []Variable) []Variable {
	out := make([]Variable, len(vars))
	copy(out, vars)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Less(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
