package model

import "math"

// TropoDelay is the Saastamoinen zenith delay split into its
// hydrostatic (dry) and wet parts, spec §3's "dryMap"/"wetMap" pair.
// Grounded on the teacher's TropModelPrec/ModelTrop (ppp.go), which
// combines a Saastamoinen zenith model with a mapping function; this
// keeps the same two-part (zhd, zwd) shape but exposes it standalone so
// the equation assembler can pull dryMap/wetMap coefficients directly.
type TropoDelay struct {
	ZHD float64 // zenith hydrostatic delay, meters
	ZWD float64 // zenith wet delay, meters
}

// Saastamoinen computes the zenith hydrostatic and wet delay from
// surface pressure (hPa), temperature (degC), relative humidity (0-1)
// and latitude (radians) at the given ellipsoidal height (m),
// following the teacher's TropModelPrec constants.
func Saastamoinen(latRad, heightM, pressureHPa, tempC, humidity float64) TropoDelay {
	if heightM < -100 || heightM > 20000 || pressureHPa <= 0 {
		return TropoDelay{}
	}
	tempK := tempC + 273.16
	// Saturation vapor pressure (teacher's TropModelPrec formula).
	e := 6.108 * humidity * math.Exp((17.15*tempK-4684.0)/(tempK-38.45))
	zhd := 0.0022768 * pressureHPa / (1.0 - 0.00266*math.Cos(2*latRad) - 0.00028*heightM/1000.0)
	zwd := 0.002277 * (1255.0/tempK + 0.05) * e
	return TropoDelay{ZHD: zhd, ZWD: zwd}
}

// DryMapping is the Niell/GMF-family hydrostatic mapping function
// approximated by the simple 1/sin(el) used by the
// teacher's ModelTrop when no external grid is wired; elevation in
// radians. A full VMF1/GPT2 grid is a Store (see pkg/station), not a
// closed-form function — this is the fallback used when no such store
// is provided.
func DryMapping(elevationRad float64) float64 {
	return 1.0 / math.Sin(elevationRad)
}

// WetMapping is the matching wet mapping function.
func WetMapping(elevationRad float64) float64 {
	return 1.0 / math.Sin(elevationRad)
}

// SlantIono converts a reference-frequency slant ionospheric delay
// (meters, at frequency refFreq) to the equivalent delay at freq,
// spec §4.3's "scaled by frequency ratio relative to a reference
// signal".
func SlantIono(referenceDelay, refFreq, freq float64) float64 {
	return referenceDelay * (refFreq * refFreq) / (freq * freq)
}
