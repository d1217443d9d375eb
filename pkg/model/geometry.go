// Package model computes the non-combination correction terms that feed
// prefit residuals: geometric range, relativity, gravitational delay,
// troposphere mapping, tidal site displacement, phase wind-up, and
// antenna phase-center offsets/variations. Each function is grounded on
// the teacher's ppp.go/tides.go geometry but operates on plain ECEF
// vectors rather than RTKLIB's PrcOpt/Rtk globals.
package model

import "math"

// Vec3 is an ECEF or ENU 3-vector.
type Vec3 [3]float64

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
func (a Vec3) Norm() float64 { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Unit() Vec3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return Vec3{a[0] / n, a[1] / n, a[2] / n}
}
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// GeometricRange returns rho = |satPos - rcvPos|, spec §3's "rho" TypeID.
func GeometricRange(satPos, rcvPos Vec3) float64 {
	return satPos.Sub(rcvPos).Norm()
}

// Relativity returns the periodic relativistic clock correction
// -2*(r·v)/c for an eccentric satellite orbit, spec §3's "relativity"
// TypeID. satVel is the satellite ECEF velocity.
func Relativity(satPos, satVel Vec3, clight float64) float64 {
	return -2.0 * satPos.Dot(satVel) / clight
}

// GravDelay returns the Shapiro gravitational delay for a signal
// travelling from satPos to rcvPos, spec §3's "gravDelay" TypeID.
// mu is the Earth gravitational constant (m^3/s^2).
func GravDelay(satPos, rcvPos Vec3, mu, clight float64) float64 {
	rSat := satPos.Norm()
	rRcv := rcvPos.Norm()
	rho := satPos.Sub(rcvPos).Norm()
	return 2.0 * mu / (clight * clight) * math.Log((rSat+rRcv+rho)/(rSat+rRcv-rho))
}

// Elevation returns the elevation angle (radians) of satPos as seen
// from rcvPos, given the local ENU unit vectors at the receiver.
func Elevation(satPos, rcvPos Vec3, enuUp Vec3) float64 {
	los := satPos.Sub(rcvPos).Unit()
	sinEl := los.Dot(enuUp)
	if sinEl > 1 {
		sinEl = 1
	} else if sinEl < -1 {
		sinEl = -1
	}
	return math.Asin(sinEl)
}

// Azimuth returns the azimuth angle (radians, 0=north, clockwise) of
// satPos as seen from rcvPos, given the local ENU north/east unit
// vectors at the receiver.
func Azimuth(satPos, rcvPos, enuNorth, enuEast Vec3) float64 {
	los := satPos.Sub(rcvPos).Unit()
	return math.Atan2(los.Dot(enuEast), los.Dot(enuNorth))
}

// Ned2Ecef rotates a local-tangent (north,east,up) displacement into
// ECEF at geodetic latRad/lonRad, ported from the teacher's
// Enu2Ecef/XYZ2Enu (common.go), used to bring PoleTide's (north,east,
// up) displacement into the ECEF frame SolidEarthTide already returns.
func Ned2Ecef(latRad, lonRad float64, n, e, u float64) Vec3 {
	sinp, cosp := math.Sin(latRad), math.Cos(latRad)
	sinl, cosl := math.Sin(lonRad), math.Cos(lonRad)
	return Vec3{
		-sinl*e - sinp*cosl*n + cosp*cosl*u,
		cosl*e - sinp*sinl*n + cosp*sinl*u,
		cosp*n + sinp*u,
	}
}
