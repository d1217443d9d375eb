package obs

import (
	"fmt"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
)

// TypeID is a value from the closed observation/derived-quantity
// vocabulary described in spec §3. It is intentionally a thin,
// comparable wrapper around a canonical name rather than a bare int
// enum: the vocabulary includes ~400 raw observable tags plus an open
// set of derived, parameterized quantities (MW12G, prefitC1G, B1G, ...)
// that are most naturally built by name, the way the original GPSTk-
// derived TypeID.cpp builds its string table.
//
// TypeID is comparable (usable as a map key) and totally ordered by
// Name, satisfying spec §3's "value-equal and totally ordered".
type TypeID struct {
	Name string
}

func (t TypeID) String() string { return t.Name }

// Less orders TypeIDs lexically by name. Parameter ordering in the
// filter state additionally uses Variable.typeOrder (see package
// equation) to group types logically; TypeID.Less alone only breaks
// ties between Variables that already share a typeOrder.
func (t TypeID) Less(o TypeID) bool { return t.Name < o.Name }

// Raw 4-char observable tags: {C|L|D|S}{band}{tracking}{system}.
func RawObs(kind byte, band int, tracking byte, sys byte) TypeID {
	return TypeID{Name: fmt.Sprintf("%c%d%c%c", kind, band, tracking, sys)}
}

// ShortObs is the canonical 3-char observable: {C|L|D|S}{band}{system}.
func ShortObs(kind byte, band int, sys byte) TypeID {
	return TypeID{Name: fmt.Sprintf("%c%d%c", kind, band, sys)}
}

// MW builds the Melbourne-Wubbena combination TypeID for bands i,j of
// system sys, e.g. MW("G",1,2) -> "MW12G".
func MW(sys string, i, j int) TypeID { return TypeID{Name: fmt.Sprintf("MW%d%d%s", i, j, sys)} }

// GF builds the geometry-free combination TypeID for bands i,j.
func GF(sys string, i, j int) TypeID { return TypeID{Name: fmt.Sprintf("GF%d%d%s", i, j, sys)} }

// PC builds an ionosphere-free code-combination TypeID over freqs
// (e.g. PC(\"G\",[]int{1,2}) -> "PC12G").
func PC(sys string, freqs []int) TypeID { return TypeID{Name: "PC" + joinInts(freqs) + sys} }

// LC builds an ionosphere-free phase-combination TypeID over freqs.
func LC(sys string, freqs []int) TypeID { return TypeID{Name: "LC" + joinInts(freqs) + sys} }

// Prefit builds the prefit-residual TypeID for an underlying signal or
// combination type, e.g. Prefit(ShortObs('C',1,'G')) -> "prefitC1G".
func Prefit(signal TypeID) TypeID { return TypeID{Name: "prefit" + signal.Name} }

// Ambiguity builds the per-signal ambiguity TypeID B{signal}.
func Ambiguity(signal TypeID) TypeID { return TypeID{Name: "B" + signal.Name} }

// AmbiguityWL builds the wide-lane ambiguity TypeID BWL{ij}{sys}.
func AmbiguityWL(sys string, i, j int) TypeID {
	return TypeID{Name: fmt.Sprintf("BWL%d%d%s", i, j, sys)}
}

// AmbiguityLC builds the ionosphere-free-combination ambiguity TypeID.
func AmbiguityLC(sys string, freqs []int) TypeID {
	return TypeID{Name: "BLC" + joinInts(freqs) + sys}
}

func joinInts(v []int) string {
	out := make([]byte, 0, len(v))
	for _, n := range v {
		out = append(out, byte('0'+n))
	}
	return string(out)
}

// Fixed, non-parameterized derived TypeIDs used throughout the
// pipeline (geometry, troposphere, solution outputs, flags).
var (
	Rho          = TypeID{Name: "rho"}
	Relativity   = TypeID{Name: "relativity"}
	GravDelay    = TypeID{Name: "gravDelay"}
	DryMap       = TypeID{Name: "dryMap"}
	WetMap       = TypeID{Name: "wetMap"}
	TropoSlant   = TypeID{Name: "tropoSlant"}
	WetTropo     = TypeID{Name: "wetTropo"}
	GradN        = TypeID{Name: "gradN"}
	GradE        = TypeID{Name: "gradE"}
	WindUp       = TypeID{Name: "windUp"}
	CSFlag       = TypeID{Name: "CSFlag"}
	Elevation    = TypeID{Name: "elevation"}
	Azimuth      = TypeID{Name: "azimuth"}
	Weight       = TypeID{Name: "weight"}
	DN           = TypeID{Name: "dN"}
	DE           = TypeID{Name: "dE"}
	DU           = TypeID{Name: "dU"}
	SatClock     = TypeID{Name: "satClockDelta"}
	RecClock     = TypeID{Name: "cdt"}
	SlantIonoPfx = "slantIono"
	IFBPfx       = "ifb"
	SatPCOPfx    = "satPCO"
	SatPCenter   = TypeID{Name: "satPCenter"}
	RcvCorr      = TypeID{Name: "rcvCorr"}
	LosN         = TypeID{Name: "losN"}
	LosE         = TypeID{Name: "losE"}
	LosU         = TypeID{Name: "losU"}
)

// SlantIono builds the per-signal slant ionospheric delay TypeID.
func SlantIono(signal TypeID) TypeID { return TypeID{Name: SlantIonoPfx + signal.Name} }

// IFB builds the per-signal inter-frequency-bias TypeID.
func IFB(signal TypeID) TypeID { return TypeID{Name: IFBPfx + signal.Name} }

// SatPCO builds the per-signal satellite phase-center-offset TypeID.
func SatPCO(signal TypeID) TypeID { return TypeID{Name: SatPCOPfx + signal.Name} }

// UpdEWL/UpdWL/UpdNL build the per-satellite UPD-product TypeID spec
// §6's "UPD / IRC" external interface names (per-day extra-wide-lane
// and wide-lane, per-epoch narrow-lane), used to key BiasStore.UPD.
func UpdEWL(sat gnssid.SatID) TypeID { return TypeID{Name: "updEWL" + sat.String()} }
func UpdWL(sat gnssid.SatID) TypeID  { return TypeID{Name: "updWL" + sat.String()} }
func UpdNL(sat gnssid.SatID) TypeID  { return TypeID{Name: "updNL" + sat.String()} }
