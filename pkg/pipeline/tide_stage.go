package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/model"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// ComputeStaTides recomputes the station's tide-displaced position
// each epoch and writes it into Displaced, ported from
// ComputeStaTides.cpp's getTides (solid + ocean + pole), which folds
// the same three corrections into the station's nominal position
// before the geometry stage uses it. Ocean loading is omitted: this
// module has no BLQ loading-coefficient store (spec's external-
// interfaces list names no such input), so only the solid and pole
// terms are wired; Displaced is read by a GeometryStage built with
// RcvPos: tides.Displaced on every epoch.
type ComputeStaTides struct {
	NominalPos     model.Vec3
	SiteUp         model.Vec3
	LatRad, LonRad float64
	SunPosOf       func(epoch obs.Epoch) model.Vec3
	MoonPosOf      func(epoch obs.Epoch) model.Vec3
	GMSTOf         func(epoch obs.Epoch) float64
	PolarMotionOf  func(epoch obs.Epoch) (xp, yp, xpBar, ypBar float64)
	Displaced      model.Vec3
}

func (*ComputeStaTides) Name() string { return "ComputeStaTides" }

func (c *ComputeStaTides) Process(epoch obs.Epoch, _ obs.SatTypeValueMap) error {
	c.Displaced = c.NominalPos
	if c.SunPosOf == nil || c.MoonPosOf == nil || c.GMSTOf == nil {
		return nil
	}
	solid := model.SolidEarthTide(c.SunPosOf(epoch), c.MoonPosOf(epoch), c.SiteUp, c.LatRad, c.LonRad, c.GMSTOf(epoch))

	var pole model.Vec3
	if c.PolarMotionOf != nil {
		xp, yp, xpBar, ypBar := c.PolarMotionOf(epoch)
		p := model.PoleTide(c.LatRad, c.LonRad, xp, yp, xpBar, ypBar)
		pole = model.Ned2Ecef(c.LatRad, c.LonRad, p[0], p[1], p[2])
	}

	c.Displaced = model.Vec3{
		c.NominalPos[0] + solid[0] + pole[0],
		c.NominalPos[1] + solid[1] + pole[1],
		c.NominalPos[2] + solid[2] + pole[2],
	}
	return nil
}
