package obs

import "github.com/xbfeng/gnssppp/pkg/gnssid"

// SatTypeValueMap is SatID -> TypeValueMap, keys unique (spec §3).
type SatTypeValueMap map[gnssid.SatID]TypeValueMap

// NewSatTypeValueMap returns an empty map, ready to use.
func NewSatTypeValueMap() SatTypeValueMap { return make(SatTypeValueMap) }

// Satellites returns the satellites present, sorted ascending per the
// canonical (system, PRN) order (spec §3's SatID ordering).
func (m SatTypeValueMap) Satellites() []gnssid.SatID {
	ids := make([]gnssid.SatID, 0, len(m))
	for s := range m {
		ids = append(ids, s)
	}
	return gnssid.SortSatIDs(ids)
}

// ExtractSatID returns a new map containing only sat (if present).
func (m SatTypeValueMap) ExtractSatID(sat gnssid.SatID) SatTypeValueMap {
	out := NewSatTypeValueMap()
	if v, ok := m[sat]; ok {
		out[sat] = v.Clone()
	}
	return out
}

// ExtractSatIDs returns a new map containing only the satellites in set.
func (m SatTypeValueMap) ExtractSatIDs(set []gnssid.SatID) SatTypeValueMap {
	out := NewSatTypeValueMap()
	for _, sat := range set {
		if v, ok := m[sat]; ok {
			out[sat] = v.Clone()
		}
	}
	return out
}

// KeepOnlySatID mutates m in place, keeping only sat.
func (m SatTypeValueMap) KeepOnlySatID(sat gnssid.SatID) {
	for s := range m {
		if s != sat {
			delete(m, s)
		}
	}
}

// KeepOnlySatIDs mutates m in place, keeping only the satellites in set.
func (m SatTypeValueMap) KeepOnlySatIDs(set []gnssid.SatID) {
	keep := make(map[gnssid.SatID]struct{}, len(set))
	for _, s := range set {
		keep[s] = struct{}{}
	}
	for s := range m {
		if _, ok := keep[s]; !ok {
			delete(m, s)
		}
	}
}

// RemoveSatIDs mutates m in place, deleting every satellite in set.
func (m SatTypeValueMap) RemoveSatIDs(set []gnssid.SatID) {
	for _, s := range set {
		delete(m, s)
	}
}

// ExtractTypes returns a new map with each satellite's TypeValueMap
// restricted to types.
func (m SatTypeValueMap) ExtractTypes(types []TypeID) SatTypeValueMap {
	out := NewSatTypeValueMap()
	for sat, tvm := range m {
		out[sat] = tvm.ExtractTypes(types)
	}
	return out
}

// KeepOnlyTypes mutates m in place, restricting every satellite's
// TypeValueMap to types.
func (m SatTypeValueMap) KeepOnlyTypes(types []TypeID) {
	for _, tvm := range m {
		tvm.KeepOnlyTypes(types)
	}
}

// RemoveTypes mutates m in place, deleting types from every satellite.
func (m SatTypeValueMap) RemoveTypes(types []TypeID) {
	for _, tvm := range m {
		tvm.RemoveTypes(types)
	}
}

// Insert stores tvm for sat, replacing any prior entry.
func (m SatTypeValueMap) Insert(sat gnssid.SatID, tvm TypeValueMap) { m[sat] = tvm }

// Matrix builds a dense, row-major matrix whose rows follow the sorted
// SatID order and whose columns follow cols. Missing cells are zero —
// this is a documented contract (spec §3), not an error: callers that
// need to distinguish "absent" from "zero" must check Has() first.
func (m SatTypeValueMap) Matrix(cols []TypeID) [][]float64 {
	sats := m.Satellites()
	out := make([][]float64, len(sats))
	for i, sat := range sats {
		row := make([]float64, len(cols))
		tvm := m[sat]
		for j, t := range cols {
			if v, ok := tvm[t]; ok {
				row[j] = v
			}
		}
		out[i] = row
	}
	return out
}

// InsertColumn stores a column of values under type t, one value per
// satellite, ordered to match the current sorted SatID order (spec
// §3's "insert a column of values ordered to match current sorted
// SatIDs"). Panics if len(values) != number of satellites currently in
// m — a programming error, not a data error, since the caller must have
// derived values from m.Satellites() in the first place.
func (m SatTypeValueMap) InsertColumn(t TypeID, values []float64) {
	sats := m.Satellites()
	if len(values) != len(sats) {
		panic("obs: InsertColumn value count does not match satellite count")
	}
	for i, sat := range sats {
		m[sat].Set(t, values[i])
	}
}

// Clone returns a deep copy.
func (m SatTypeValueMap) Clone() SatTypeValueMap {
	out := make(SatTypeValueMap, len(m))
	for sat, tvm := range m {
		out[sat] = tvm.Clone()
	}
	return out
}
