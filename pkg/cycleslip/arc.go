package cycleslip

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// arcKey identifies one (satellite, ambiguity-group) tuple (spec §4.6).
type arcKey struct {
	sat   gnssid.SatID
	group obs.TypeID
}

type arcEntry struct {
	counter   float64
	lastEpoch obs.Epoch
	length    int // epochs observed since this arc began or last slip
}

// Manager tracks the arc counter of spec §4.6: created at 1 on first
// appearance, incremented on a cycle slip, removed after a data gap
// longer than MaxGap.
type Manager struct {
	MaxGap float64 // seconds

	entries map[arcKey]*arcEntry
}

// DefaultMaxGap is the arc-removal gap in seconds (longer than the MW
// detector's DefaultDeltaTMax of 61 s): a satellite absent longer than
// this is treated as a fresh arc on return, not a continuation with a
// slip.
const DefaultMaxGap = 120.0

func NewManager() *Manager {
	return &Manager{MaxGap: DefaultMaxGap, entries: make(map[arcKey]*arcEntry)}
}

// Observe advances the arc for (sat, group) at epoch, given whether a
// slip was detected this epoch for sat. It returns the current arc
// number after this call.
func (m *Manager) Observe(epoch obs.Epoch, sat gnssid.SatID, group obs.TypeID, slip bool) float64 {
	k := arcKey{sat, group}
	e, ok := m.entries[k]
	if !ok {
		e = &arcEntry{counter: 1, lastEpoch: epoch, length: 1}
		m.entries[k] = e
		return e.counter
	}
	if epoch.Sub(e.lastEpoch) > m.MaxGap {
		// Gap exceeded: the tuple is removed and restarted fresh,
		// per spec §4.6 ("next appearance starts fresh at a = 1").
		e.counter = 1
		e.lastEpoch = epoch
		e.length = 1
		return e.counter
	}
	if slip {
		e.counter++
		e.length = 1
	} else {
		e.length++
	}
	e.lastEpoch = epoch
	return e.counter
}

// ArcLength returns the number of consecutive epochs (sat, group) has
// held its current arc -- the "continuous arc over the last N epochs"
// reference-satellite eligibility test of spec §4.5 step 1 -- or 0 if
// the tuple has never been observed.
func (m *Manager) ArcLength(sat gnssid.SatID, group obs.TypeID) int {
	if e, ok := m.entries[arcKey{sat, group}]; ok {
		return e.length
	}
	return 0
}

// Current returns the arc number for (sat, group) without advancing it,
// or 0 if the tuple has never been observed.
func (m *Manager) Current(sat gnssid.SatID, group obs.TypeID) float64 {
	if e, ok := m.entries[arcKey{sat, group}]; ok {
		return e.counter
	}
	return 0
}

// Expire removes every (satellite, group) tuple last seen more than
// MaxGap before epoch, matching spec §4.6's satellite-disappearance
// cleanup. It returns the satellite of each dropped tuple (a satellite
// appears once per dropped group).
func (m *Manager) Expire(epoch obs.Epoch) []gnssid.SatID {
	var dropped []gnssid.SatID
	for k, e := range m.entries {
		if epoch.Sub(e.lastEpoch) > m.MaxGap {
			dropped = append(dropped, k.sat)
			delete(m.entries, k)
		}
	}
	return dropped
}

// CombineFlags ORs the MW and GF slip sets into one per-satellite
// CSFlag set, spec §4.1's "either detector raising its flag sets a
// per-satellite slip flag".
func CombineFlags(sets ...map[gnssid.SatID]bool) map[gnssid.SatID]bool {
	out := make(map[gnssid.SatID]bool)
	for _, s := range sets {
		for sat, flagged := range s {
			if flagged {
				out[sat] = true
			}
		}
	}
	return out
}
