package station

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/model"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// FakeOrbitClockStore is a deterministic in-memory OrbitClockStore for
// tests: literal constructed tables, not a parser (spec §1 Non-goals
// exclude the SP3/broadcast parsers themselves).
type FakeOrbitClockStore struct {
	Positions map[gnssid.SatID]model.Vec3
	Velocity  map[gnssid.SatID]model.Vec3
	Clocks    map[gnssid.SatID]float64
}

func NewFakeOrbitClockStore() *FakeOrbitClockStore {
	return &FakeOrbitClockStore{
		Positions: map[gnssid.SatID]model.Vec3{},
		Velocity:  map[gnssid.SatID]model.Vec3{},
		Clocks:    map[gnssid.SatID]float64{},
	}
}

func (f *FakeOrbitClockStore) PositionVelocity(sat gnssid.SatID, _ obs.Epoch) (model.Vec3, model.Vec3, bool) {
	pos, ok := f.Positions[sat]
	return pos, f.Velocity[sat], ok
}

func (f *FakeOrbitClockStore) ClockOffset(sat gnssid.SatID, _ obs.Epoch) (float64, bool) {
	v, ok := f.Clocks[sat]
	return v, ok
}

// FakeBiasStore is a deterministic in-memory BiasStore for tests.
type FakeBiasStore struct {
	Biases map[string]float64 // key: sat.String()+"/"+signal.String()
	UPDs   map[string]float64 // key: signal.String()
}

func NewFakeBiasStore() *FakeBiasStore {
	return &FakeBiasStore{Biases: map[string]float64{}, UPDs: map[string]float64{}}
}

func (f *FakeBiasStore) SignalBias(sat gnssid.SatID, signal obs.TypeID, _ obs.Epoch) (float64, bool) {
	v, ok := f.Biases[sat.String()+"/"+signal.String()]
	return v, ok
}

func (f *FakeBiasStore) UPD(signal obs.TypeID, _ obs.Epoch) (float64, bool) {
	v, ok := f.UPDs[signal.String()]
	return v, ok
}

// FakeAntennaStore is a deterministic in-memory AntennaStore for tests.
type FakeAntennaStore struct {
	BySat      map[gnssid.SatID]model.AntennaPattern
	ByReceiver map[string]model.AntennaPattern
}

func NewFakeAntennaStore() *FakeAntennaStore {
	return &FakeAntennaStore{BySat: map[gnssid.SatID]model.AntennaPattern{}, ByReceiver: map[string]model.AntennaPattern{}}
}

func (f *FakeAntennaStore) SatellitePattern(sat gnssid.SatID, _ obs.Epoch) (model.AntennaPattern, bool) {
	p, ok := f.BySat[sat]
	return p, ok
}

func (f *FakeAntennaStore) ReceiverPattern(antennaType string) (model.AntennaPattern, bool) {
	p, ok := f.ByReceiver[antennaType]
	return p, ok
}

// FakeTideLoadingStore is a deterministic in-memory TideLoadingStore.
type FakeTideLoadingStore struct {
	ByMarker map[string][2][11][3]float64 // [0]=amplitudes, [1]=phases
}

func NewFakeTideLoadingStore() *FakeTideLoadingStore {
	return &FakeTideLoadingStore{ByMarker: map[string][2][11][3]float64{}}
}

func (f *FakeTideLoadingStore) OceanLoading(marker string) ([11][3]float64, [11][3]float64, bool) {
	v, ok := f.ByMarker[marker]
	return v[0], v[1], ok
}

// FakeErpStore is a constant-value in-memory ErpStore.
type FakeErpStore struct {
	XPole, YPole, UT1UTC float64
}

func (f FakeErpStore) Values(_ obs.Epoch) (float64, float64, float64, bool) {
	return f.XPole, f.YPole, f.UT1UTC, true
}

// FakeEphemerisStore is a constant-value in-memory EphemerisStore.
type FakeEphemerisStore struct {
	Sun, Moon model.Vec3
}

func (f FakeEphemerisStore) SunMoon(_ obs.Epoch) (model.Vec3, model.Vec3, bool) {
	return f.Sun, f.Moon, true
}
