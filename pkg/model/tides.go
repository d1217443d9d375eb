package model

import "math"

// Earth/lunar/solar constants, grounded on the teacher's tides.go.
const (
	gmEarth = 3.986004415e14
	gmSun   = 1.32712442076e20
	gmMoon  = 4.9027779e12
	reWGS84 = 6378137.0
)

// SiteDisplacement is a site-coordinate correction in ECEF meters,
// spec §3's tide-related prefit correction terms.
type SiteDisplacement Vec3

// SolidEarthTide computes the solid-earth tide displacement at a site,
// ported from the teacher's Tide_pl/Tide_solid (tides.go). sunPos and
// moonPos are ECEF vectors to the sun and moon; siteUp is the site's
// ECEF unit "up" vector (third column of the ECEF<->ENU rotation);
// latRad/lonRad are the site's geodetic latitude/longitude; gmst is
// Greenwich mean sidereal time in radians.
func SolidEarthTide(sunPos, moonPos Vec3, siteUp Vec3, latRad, lonRad, gmst float64) SiteDisplacement {
	dr1 := tidePointMass(siteUp, sunPos, gmSun, latRad, lonRad)
	dr2 := tidePointMass(siteUp, moonPos, gmMoon, latRad, lonRad)

	sin2l := math.Sin(2.0 * latRad)
	du := -0.012 * sin2l * math.Sin(gmst+lonRad)

	return SiteDisplacement{
		dr1[0] + dr2[0] + du*siteUp[0],
		dr1[1] + dr2[1] + du*siteUp[1],
		dr1[2] + dr2[2] + du*siteUp[2],
	}
}

// tidePointMass is the degree-2/3 step-1 tidal response to a single
// perturbing body (sun or moon), ported from Tide_pl.
func tidePointMass(eu Vec3, rp Vec3, gmPerturb, latRad, lonRad float64) Vec3 {
	r := rp.Norm()
	if r <= 0 {
		return Vec3{}
	}
	ep := Vec3{rp[0] / r, rp[1] / r, rp[2] / r}

	k2 := gmPerturb / gmEarth * reWGS84 * reWGS84 * reWGS84 * reWGS84 / (r * r * r)
	k3 := k2 * reWGS84 / r
	latp := math.Asin(ep[2])
	lonp := math.Atan2(ep[1], ep[0])
	cosp := math.Cos(latp)
	sinl := math.Sin(latRad)
	cosl := math.Cos(latRad)

	p := (3.0*sinl*sinl - 1.0) / 2.0
	h2 := 0.6078 - 0.0006*p
	l2 := 0.0847 + 0.0002*p
	const h3, l3 = 0.292, 0.015

	a := ep.Dot(eu)
	dp := k2 * 3.0 * l2 * a
	du := k2 * (h2*(1.5*a*a-0.5) - 3.0*l2*a*a)

	dp += k3 * l3 * (7.5*a*a - 1.5)
	du += k3 * (h3*(2.5*a*a*a-1.5*a) - l3*(7.5*a*a-1.5)*a)

	du += 3.0 / 4.0 * 0.0025 * k2 * math.Sin(2.0*latp) * math.Sin(2.0*latRad) * math.Sin(lonRad-lonp)
	du += 3.0 / 4.0 * 0.0022 * k2 * cosp * cosp * cosl * cosl * math.Sin(2.0*(lonRad-lonp))

	return Vec3{
		dp*ep[0] + du*eu[0],
		dp*ep[1] + du*eu[1],
		dp*ep[2] + du*eu[2],
	}
}

// PoleTide computes the pole-tide site displacement given the current
// and mean polar motion (radians) and site lat/lon, ported from the
// teacher's Tide_pole (tides.go), returned as (north, east, up) meters.
func PoleTide(latRad, lonRad, xp, yp, xpBar, ypBar float64) Vec3 {
	dxp := xp - xpBar
	dyp := -(yp - ypBar)
	sinl, cosl := math.Sin(latRad), math.Cos(latRad)
	sin2l, cos2l := math.Sin(2*latRad), math.Cos(2*latRad)
	sinlon, coslon := math.Sin(lonRad), math.Cos(lonRad)

	dn := -9.0 * cos2l * (dxp*coslon - dyp*sinlon)
	de := 9.0 * sinl * (dxp*sinlon + dyp*coslon)
	du := -33.0 * sin2l * (dxp*coslon - dyp*sinlon)
	_ = cosl
	return Vec3{dn * 1e-3, de * 1e-3, du * 1e-3}
}
