package pipeline

import (
	"math"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// ComputeElevWeights writes obs.Elevation/obs.Azimuth/obs.Weight for
// every satellite, ported from ComputeElevWeights.cpp. Weight is
// (2*sin(E))^p, the reciprocal of spec §4.3's sigma0^2/(2*sin(E))^p
// variance shape with sigma0 = 1 (default exponent 2).
type ComputeElevWeights struct {
	ElevationOf func(sat gnssid.SatID) float64
	AzimuthOf   func(sat gnssid.SatID) float64
	Exponent    float64 // default 2
	ElevMaskRad float64
}

func (ComputeElevWeights) Name() string { return "ComputeElevWeights" }

func (c ComputeElevWeights) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	exp := c.Exponent
	if exp == 0 {
		exp = 2.0
	}
	for _, sat := range data.Satellites() {
		el := c.ElevationOf(sat)
		// spec §8 boundary: "elevation exactly at mask -> satellite is
		// kept (inclusive)".
		if el < c.ElevMaskRad {
			delete(data, sat)
			continue
		}
		tvm := data[sat]
		tvm.Set(obs.Elevation, el)
		if c.AzimuthOf != nil {
			tvm.Set(obs.Azimuth, c.AzimuthOf(sat))
		}
		tvm.Set(obs.Weight, math.Pow(2.0*math.Sin(el), exp))
	}
	return nil
}
