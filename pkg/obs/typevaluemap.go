package obs

import "github.com/pkg/errors"

// ErrTypeMissing is returned by TypeValueMap.Value when the requested
// TypeID is not present. Spec §7 names this the TypeMissingInMap error
// kind; callers decide whether to drop the satellite, drop the type, or
// abort the stage.
var ErrTypeMissing = errors.New("obs: type not present in map")

// TypeValueMap is TypeID -> float64, keys unique, insertion order
// irrelevant (spec §3).
type TypeValueMap map[TypeID]float64

// NewTypeValueMap returns an empty map, ready to use.
func NewTypeValueMap() TypeValueMap { return make(TypeValueMap) }

// Value looks up a type, returning ErrTypeMissing on a miss.
func (m TypeValueMap) Value(t TypeID) (float64, error) {
	v, ok := m[t]
	if !ok {
		return 0, errors.Wrapf(ErrTypeMissing, "type %s", t)
	}
	return v, nil
}

// Set stores value under t, overwriting any prior value.
func (m TypeValueMap) Set(t TypeID, value float64) { m[t] = value }

// Has reports whether t is present.
func (m TypeValueMap) Has(t TypeID) bool {
	_, ok := m[t]
	return ok
}

// Types returns the set of TypeIDs present, in no particular order.
func (m TypeValueMap) Types() []TypeID {
	out := make([]TypeID, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	return out
}

// ExtractType returns a new map containing only t (if present).
func (m TypeValueMap) ExtractType(t TypeID) TypeValueMap {
	out := NewTypeValueMap()
	if v, ok := m[t]; ok {
		out[t] = v
	}
	return out
}

// ExtractTypes returns a new map containing only the types in set.
func (m TypeValueMap) ExtractTypes(set []TypeID) TypeValueMap {
	out := NewTypeValueMap()
	for _, t := range set {
		if v, ok := m[t]; ok {
			out[t] = v
		}
	}
	return out
}

// KeepOnlyTypes mutates m in place, removing every type not in set.
func (m TypeValueMap) KeepOnlyTypes(set []TypeID) {
	keep := make(map[TypeID]struct{}, len(set))
	for _, t := range set {
		keep[t] = struct{}{}
	}
	for t := range m {
		if _, ok := keep[t]; !ok {
			delete(m, t)
		}
	}
}

// RemoveTypes mutates m in place, deleting every type in set.
func (m TypeValueMap) RemoveTypes(set []TypeID) {
	for _, t := range set {
		delete(m, t)
	}
}

// Clone returns a shallow copy.
func (m TypeValueMap) Clone() TypeValueMap {
	out := make(TypeValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
