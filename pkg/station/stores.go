package station

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/model"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// The Stores below are read-only collaborator contracts (spec §1 Non-
// goals explicitly exclude the parsers that populate them: RINEX/SP3/
// CLK/SINEX/ANTEX/BLQ/ERP/OSB/DSB/IFCB/UPD). StationPool builds one
// StoreBundle before fan-out and every Station accesses it immutably
// thereafter (spec §5).

// OrbitClockStore resolves a satellite's ECEF position/velocity and
// clock offset at an epoch, backed by SP3 (Lagrange-interpolated) or
// broadcast ephemerides per spec §6.
type OrbitClockStore interface {
	PositionVelocity(sat gnssid.SatID, e obs.Epoch) (pos, vel model.Vec3, ok bool)
	ClockOffset(sat gnssid.SatID, e obs.Epoch) (offsetSeconds float64, ok bool)
}

// BiasStore resolves per-signal hardware biases (OSB/DSB) and the
// EWL/WL/NL UPD products spec §4.5 needs for fixing.
type BiasStore interface {
	SignalBias(sat gnssid.SatID, signal obs.TypeID, e obs.Epoch) (nanoseconds float64, ok bool)
	UPD(signal obs.TypeID, e obs.Epoch) (cycles float64, ok bool)
}

// AntennaStore resolves satellite/receiver PCO/PCV, spec §6's ANTEX
// contract.
type AntennaStore interface {
	SatellitePattern(sat gnssid.SatID, e obs.Epoch) (model.AntennaPattern, bool)
	ReceiverPattern(antennaType string) (model.AntennaPattern, bool)
}

// TideLoadingStore resolves per-station BLQ ocean-loading coefficients.
type TideLoadingStore interface {
	OceanLoading(marker string) (amplitudes, phases [11][3]float64, ok bool)
}

// ErpStore resolves daily Earth-orientation parameters.
type ErpStore interface {
	Values(e obs.Epoch) (xpole, ypole, ut1utc float64, ok bool)
}

// EphemerisStore resolves JPL DE405 planetary positions (sun/moon),
// used by the solid-earth-tide model (pkg/model.SolidEarthTide).
type EphemerisStore interface {
	SunMoon(e obs.Epoch) (sun, moon model.Vec3, ok bool)
}

// StoreBundle is the immutable set of collaborator contracts shared by
// every Station in a StationPool (spec §5's "constructed before fan-
// out, accessed immutably thereafter").
type StoreBundle struct {
	Orbit  OrbitClockStore
	Bias   BiasStore
	Ant    AntennaStore
	Tide   TideLoadingStore
	Erp    ErpStore
	Ephem  EphemerisStore
}
