package obs

import "github.com/xbfeng/gnssppp/pkg/gnssid"

// Record is one epoch's worth of observations for a single station
// (spec §3's "Observation record"). The file parsers that populate it
// are an external collaborator contract (spec §1 Non-goals); this type
// is the abstract store the pipeline consumes.
type Record struct {
	Epoch          Epoch
	ApproxPosition [3]float64 // receiver position estimate, ECEF meters
	ReferencePos   [3]float64 // known/reference position, ECEF meters (for RMS scoring)
	Marker         string
	ReceiverType   string
	AntennaType    string
	AntennaDelta   [3]float64 // east/north/up offset, meters

	// ObsTypes declares, per system, the observable-type vector the
	// RINEX header advertised for that system.
	ObsTypes map[gnssid.System][]TypeID

	Data SatTypeValueMap

	// Bookkeeping mirrored from the original header/epoch-flag fields.
	BeginEpoch Epoch
	EndEpoch   Epoch
	Interval   float64
	IsFirst    bool
}

// Clone returns a deep copy of r (the pipeline mutates Data heavily
// stage-to-stage and callers that need to keep the original should
// clone first).
func (r *Record) Clone() *Record {
	out := *r
	out.Data = r.Data.Clone()
	if r.ObsTypes != nil {
		out.ObsTypes = make(map[gnssid.System][]TypeID, len(r.ObsTypes))
		for k, v := range r.ObsTypes {
			cp := make([]TypeID, len(v))
			copy(cp, v)
			out.ObsTypes[k] = cp
		}
	}
	return &out
}
