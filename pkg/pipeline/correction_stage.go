package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/model"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// CorrectRecBias writes obs.RcvCorr for every satellite using a
// caller-supplied model (receiver PCO/PCV projected onto line of
// sight), ported from CorrectRecBias.cpp.
type CorrectRecBias struct {
	Correction func(sat gnssid.SatID) (float64, bool)
}

func (CorrectRecBias) Name() string { return "CorrectRecBias" }

func (c CorrectRecBias) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	if c.Correction == nil {
		return nil
	}
	for _, sat := range data.Satellites() {
		v, ok := c.Correction(sat)
		if !ok {
			continue
		}
		data[sat].Set(obs.RcvCorr, v)
	}
	return nil
}

// CorrectPhaseBiases writes one satellite clock/bias correction
// (SatClock) for every satellite using a caller-supplied store lookup,
// ported from CorrectPhaseBiases.cpp/CorrectRecBias.cpp's "drop this
// satellite this epoch" policy on a missing bias (spec §7 BiasNotFound).
type CorrectPhaseBiases struct {
	SatClockOf func(sat gnssid.SatID) (float64, bool)
}

func (CorrectPhaseBiases) Name() string { return "CorrectPhaseBiases" }

func (c CorrectPhaseBiases) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	if c.SatClockOf == nil {
		return nil
	}
	for _, sat := range data.Satellites() {
		v, ok := c.SatClockOf(sat)
		if !ok {
			delete(data, sat)
			continue
		}
		data[sat].Set(obs.SatClock, v)
	}
	return nil
}

// GeometryStage writes rho/relativity/gravDelay, and -- when ComputeLOS
// is set -- the line-of-sight unit
// vector (losN/losE/losU, spec §4.3's ENU design-matrix coefficients)
// for every satellite from caller-supplied ECEF positions, ported from
// the teacher's PPPResidual geometry block (ppp.go), delegating the
// actual formulas to pkg/model.
type GeometryStage struct {
	SatPos, SatVel  func(sat gnssid.SatID) model.Vec3
	RcvPos          model.Vec3
	GM, CLight      float64
	North, East, Up model.Vec3 // site ENU basis; read only when ComputeLOS is set
	ComputeLOS      bool
}

func (GeometryStage) Name() string { return "Geometry" }

func (g GeometryStage) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for _, sat := range data.Satellites() {
		if g.SatPos == nil {
			continue
		}
		sp := g.SatPos(sat)
		tvm := data[sat]
		tvm.Set(obs.Rho, model.GeometricRange(sp, g.RcvPos))
		if g.SatVel != nil {
			sv := g.SatVel(sat)
			tvm.Set(obs.Relativity, model.Relativity(sp, sv, g.CLight))
		}
		tvm.Set(obs.GravDelay, model.GravDelay(sp, g.RcvPos, g.GM, g.CLight))
		if g.ComputeLOS {
			los := sp.Sub(g.RcvPos).Unit()
			tvm.Set(obs.LosN, los.Dot(g.North))
			tvm.Set(obs.LosE, los.Dot(g.East))
			tvm.Set(obs.LosU, los.Dot(g.Up))
		}
	}
	return nil
}
