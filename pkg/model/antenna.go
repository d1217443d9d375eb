package model

import "math"

// AntennaPattern is an ANTEX-derived per-frequency phase-center model:
// a fixed offset plus a nadir-angle variation grid, spec §6's ANTEX
// input contract. Values are interpolated linearly between grid nodes.
type AntennaPattern struct {
	PCO      Vec3      // phase-center offset, antenna-frame meters
	NadirPCV []float64 // variation (meters) sampled at NadirStep intervals starting at 0
	NadirStep float64  // radians between grid samples
}

// Nadir returns the satellite-to-receiver nadir angle, ported from the
// teacher's SatAntPcv (ppp.go): the angle at the satellite between the
// direction to the receiver and the direction to Earth's center.
func Nadir(satPos, rcvPos Vec3) float64 {
	toRcv := rcvPos.Sub(satPos).Unit()
	toEarth := Vec3{-satPos[0], -satPos[1], -satPos[2]}.Unit()
	cosa := toRcv.Dot(toEarth)
	if cosa < -1.0 {
		cosa = -1.0
	} else if cosa > 1.0 {
		cosa = 1.0
	}
	return math.Acos(cosa)
}

// PCV linearly interpolates the nadir-angle phase variation grid,
// ported from the teacher's AntModel_s lookup.
func (p AntennaPattern) PCV(nadirRad float64) float64 {
	if len(p.NadirPCV) == 0 || p.NadirStep <= 0 {
		return 0
	}
	idx := nadirRad / p.NadirStep
	i0 := int(math.Floor(idx))
	if i0 < 0 {
		return p.NadirPCV[0]
	}
	if i0 >= len(p.NadirPCV)-1 {
		return p.NadirPCV[len(p.NadirPCV)-1]
	}
	frac := idx - float64(i0)
	return p.NadirPCV[i0]*(1-frac) + p.NadirPCV[i0+1]*frac
}

// SatPCenter projects the satellite PCO onto the receiver line of
// sight and adds the nadir-dependent PCV, spec §3's "satPCenter"
// TypeID. satX/satY/satZ are the satellite body-frame axes (ECEF).
func SatPCenter(satPos, rcvPos Vec3, satX, satY, satZ Vec3, pat AntennaPattern) float64 {
	los := rcvPos.Sub(satPos).Unit()
	pcoECEF := Vec3{
		satX[0]*pat.PCO[0] + satY[0]*pat.PCO[1] + satZ[0]*pat.PCO[2],
		satX[1]*pat.PCO[0] + satY[1]*pat.PCO[1] + satZ[1]*pat.PCO[2],
		satX[2]*pat.PCO[0] + satY[2]*pat.PCO[1] + satZ[2]*pat.PCO[2],
	}
	return pcoECEF.Dot(los) + pat.PCV(Nadir(satPos, rcvPos))
}

// RcvAntCorr projects the receiver PCO onto the local up direction
// (used in place of the line of sight; elevationRad enters only the
// PCV term) and adds the elevation-dependent PCV (az/el grid flattened to elevation-only
// here; a full az/el ANTEX grid is a Store concern), spec §3's
// "rcvCorr" TypeID.
func RcvAntCorr(elevationRad float64, pco Vec3, enuNorth, enuEast, enuUp Vec3, elevPCV func(float64) float64) float64 {
	pcoECEF := Vec3{
		enuNorth[0]*pco[0] + enuEast[0]*pco[1] + enuUp[0]*pco[2],
		enuNorth[1]*pco[0] + enuEast[1]*pco[1] + enuUp[1]*pco[2],
		enuNorth[2]*pco[0] + enuEast[2]*pco[1] + enuUp[2]*pco[2],
	}
	los := enuUp // approx: receiver-to-satellite projected mainly onto up for small PCO
	v := pcoECEF.Dot(los)
	if elevPCV != nil {
		v += elevPCV(elevationRad)
	}
	return v
}
