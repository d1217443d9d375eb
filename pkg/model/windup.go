package model

import "math"

// WindUp computes the carrier phase wind-up correction in cycles,
// ported from the teacher's Model_Phw (ppp.go), generalized to take
// plain ECEF unit vectors instead of RTKLIB's yaw-attitude globals.
// satX/satY are the satellite body-frame x/y axis unit vectors (ECEF);
// rcvNorth/rcvEast are the receiver's local ENU north/east unit
// vectors (ECEF); prevCycles is the wind-up value from the previous
// epoch for this satellite, used to keep the result continuous (the
// raw arccos only resolves wind-up modulo one cycle).
func WindUp(satPos, rcvPos Vec3, satX, satY, rcvNorth, rcvEast Vec3, prevCycles float64) float64 {
	ek := satPos.Sub(rcvPos).Unit()

	eks := ek.Cross(satY)
	ekr := ek.Cross(rcvEast)

	var ds, dr Vec3
	dotSatX := ek.Dot(satX)
	dotRcvNorth := ek.Dot(rcvNorth)
	for i := 0; i < 3; i++ {
		ds[i] = satX[i] - ek[i]*dotSatX - eks[i]
		dr[i] = rcvNorth[i] - ek[i]*dotRcvNorth + ekr[i]
	}

	cosp := ds.Dot(dr) / (ds.Norm() * dr.Norm())
	if cosp < -1.0 {
		cosp = -1.0
	} else if cosp > 1.0 {
		cosp = 1.0
	}
	ph := math.Acos(cosp) / 2.0 / math.Pi

	drs := ds.Cross(dr)
	if ek.Dot(drs) < 0.0 {
		ph = -ph
	}

	return ph + math.Floor(prevCycles-ph+0.5)
}
